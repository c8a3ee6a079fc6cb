package app

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// LoadConfig carga envFile (si existe) y después la config YAML.
// path vacío => $CONFIG_PATH, configs/config.yaml o configs/config.example.yaml.
func LoadConfig(path, envFile string) (*config.Config, error) {
	if envFile != "" && fileExists(envFile) {
		// las variables ya exportadas ganan sobre el .env
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
		if !fileExists(path) {
			path = "configs/config.example.yaml"
		}
	}
	return config.Load(path)
}

// InitLogger configura el logger global según app.env / app.log_level.
func InitLogger(cfg *config.Config, version string) {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "hellomail",
		Version:     version,
	})
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
