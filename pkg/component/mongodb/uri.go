package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	options "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
)

// ValidateURI parses uri with the driver's connection string parser.
// A malformed URI is reported as storage.ErrInvalidConfig.
func ValidateURI(uri string) error {
	if uri == "" {
		return storage.ErrInvalidConfig.WithMessage("mongodb url is empty")
	}
	if _, err := connstring.ParseAndValidate(uri); err != nil {
		return storage.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("malformed mongodb url %q", options.RedactURI(uri))).
			WithCause(err)
	}
	return nil
}
