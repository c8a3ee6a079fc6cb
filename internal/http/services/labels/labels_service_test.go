package labels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/label"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

func TestLabels(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)
	svc := NewService(Deps{Labels: st.Labels})

	tests := []struct {
		name string
		in   dto.Request
		err  error
	}{
		{"missing name", dto.Request{Name: " ", Color: "#fff"}, ErrMissingName},
		{"no hash", dto.Request{Name: "vip", Color: "fff"}, ErrInvalidColor},
		{"bad length", dto.Request{Name: "vip", Color: "#ffff"}, ErrInvalidColor},
		{"named color", dto.Request{Name: "vip", Color: "red"}, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, w.ID, tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	l, err := svc.Create(ctx, w.ID, dto.Request{Name: " VIP ", Color: "#A1B2C3"})
	require.NoError(t, err)
	assert.Equal(t, "VIP", l.Name)
	assert.Equal(t, "#a1b2c3", l.Color)

	_, err = svc.Create(ctx, w.ID, dto.Request{Name: "vip", Color: "#000"})
	assert.ErrorIs(t, err, ErrNameTaken)

	up, err := svc.Update(ctx, w.ID, l.LabelID, dto.Request{Name: "Gold", Color: "#FC0"})
	require.NoError(t, err)
	assert.Equal(t, "#fc0", up.Color)

	_, err = svc.Update(ctx, w.ID, "missing", dto.Request{Name: "x", Color: "#000"})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	require.NoError(t, svc.Delete(ctx, w.ID, l.LabelID))
	assert.ErrorIs(t, svc.Delete(ctx, w.ID, l.LabelID), ErrNotFound)
}
