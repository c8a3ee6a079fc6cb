// Package jwt firma y valida los dos tipos de token HS256 del servicio:
// la cookie de sesión y los links de unsubscribe embebidos en cada campaña.
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	PurposeSession     = "session"
	PurposeUnsubscribe = "unsubscribe"
)

var (
	ErrInvalidToken = errors.New("invalid_jwt")
	ErrExpired      = errors.New("expired")
	ErrWrongPurpose = errors.New("wrong_purpose")
)

// SessionClaims viaja en la cookie de sesión.
type SessionClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwtv5.RegisteredClaims
}

// UnsubscribeClaims identifica contacto y website sin exponer ids adivinables.
type UnsubscribeClaims struct {
	ContactID string `json:"cid"`
	WebsiteID string `json:"wid"`
	Purpose   string `json:"purpose"`
	jwtv5.RegisteredClaims
}

// Signer emite y valida tokens con un secreto compartido.
type Signer struct {
	secret     []byte
	issuer     string
	SessionTTL time.Duration
	now        func() time.Time
}

func NewSigner(secret, issuer string, sessionTTL time.Duration) *Signer {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), issuer: issuer, SessionTTL: sessionTTL, now: time.Now}
}

func (s *Signer) keyfunc(t *jwtv5.Token) (any, error) {
	return s.secret, nil
}

func (s *Signer) parser() *jwtv5.Parser {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(30 * time.Second),
		jwtv5.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(s.issuer))
	}
	return jwtv5.NewParser(opts...)
}

// IssueSession firma un token de sesión para userID.
func (s *Signer) IssueSession(userID, email string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.SessionTTL)
	claims := SessionClaims{
		Email:   strings.ToLower(email),
		Purpose: PurposeSession,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secret)
	return tok, exp, err
}

// ParseSession valida firma, exp y propósito.
func (s *Signer) ParseSession(raw string) (*SessionClaims, error) {
	var c SessionClaims
	if err := s.parse(raw, &c); err != nil {
		return nil, err
	}
	if c.Purpose != PurposeSession || c.Subject == "" {
		return nil, ErrWrongPurpose
	}
	return &c, nil
}

// IssueUnsubscribe no expira: los links quedan en bandejas de entrada por tiempo indefinido.
func (s *Signer) IssueUnsubscribe(contactID, websiteID string) (string, error) {
	claims := UnsubscribeClaims{
		ContactID: contactID,
		WebsiteID: websiteID,
		Purpose:   PurposeUnsubscribe,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:   s.issuer,
			IssuedAt: jwtv5.NewNumericDate(s.now()),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) ParseUnsubscribe(raw string) (*UnsubscribeClaims, error) {
	var c UnsubscribeClaims
	if err := s.parse(raw, &c); err != nil {
		return nil, err
	}
	if c.Purpose != PurposeUnsubscribe || c.ContactID == "" || c.WebsiteID == "" {
		return nil, ErrWrongPurpose
	}
	return &c, nil
}

func (s *Signer) parse(raw string, claims jwtv5.Claims) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrInvalidToken
	}
	tok, err := s.parser().ParseWithClaims(raw, claims, s.keyfunc)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalidToken
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
