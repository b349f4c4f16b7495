package newsletter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

var validate = validator.New()

type upstreamDoer interface {
	Do(ctx context.Context, req upstream.Request) ([]byte, error)
}

// Result reports how a subscription request ended.
type Result struct {
	Email             string `json:"email"`
	AlreadySubscribed bool   `json:"alreadySubscribed"`
}

// Service forwards newsletter sign-ups to the commerce API.
type Service interface {
	Subscribe(ctx context.Context, email string) (*Result, error)
}

type service struct {
	client upstreamDoer
	logg   *logger.Logger
}

func NewService(client upstreamDoer, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: client, logg: logg}, nil
}

// Subscribe validates and lower-cases the address, then posts it. An upstream conflict
// means the address is already on the list and counts as success.
func (s *service) Subscribe(ctx context.Context, email string) (*Result, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	_, err = s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/newsletter/subscribe",
		Body:   map[string]string{"email": normalized},
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return &Result{Email: normalized, AlreadySubscribed: true}, nil
		}
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "email_hash", HashEmail(normalized)), "newsletter.subscribed")
	return &Result{Email: normalized}, nil
}

// NormalizeEmail trims and lower-cases a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "enter a valid email address").
			WithDetails(map[string]any{"field": "email"})
	}
	return email, nil
}

// HashEmail is the stable key used for logs and per-address rate limits.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
