package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const healthDocument = "_health"

var (
	errProjectIDRequired    = errors.New("firestore project id is required")
	errCollectionRequired   = errors.New("firestore collection is required")
	errClientNotInitialized = errors.New("firestore client not initialized")
)

type Client struct {
	client     *firestore.Client
	projectID  string
	collection string
}

// NewClient creates a Firestore client for the configured project.
func NewClient(ctx context.Context, cfg config.FirestoreConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	collection := strings.TrimSpace(cfg.WishlistCollection)
	if collection == "" {
		return nil, errCollectionRequired
	}

	fsClient, err := firestore.NewClient(ctx, projectID, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "firestore_project", projectID), "firestore client initialized")
	}

	return &Client{client: fsClient, projectID: projectID, collection: collection}, nil
}

func clientOptions(cfg config.FirestoreConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

// Raw exposes the underlying client for repositories.
func (c *Client) Raw() *firestore.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Collection returns the configured wishlist collection name.
func (c *Client) Collection() string {
	if c == nil {
		return ""
	}
	return c.collection
}

// Ping reads a well-known document; a missing document still proves the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errClientNotInitialized
	}
	_, err := c.client.Collection(c.collection).Doc(healthDocument).Get(ctx)
	if err == nil || IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("firestore ping: %w", err)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsNotFound reports whether err is Firestore's "document does not exist".
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
