package mongodb

import (
	"fmt"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	"github.com/kart-io/sentinel-mongo/pkg/utils/validator"
)

// Qualifier names the database, and optionally the collection, a caller
// wants a handle for. Only missing names are rejected here; the driver and
// server decide which names are legal.
type Qualifier struct {
	Database   string `json:"database" validate:"required"`
	Collection string `json:"collection,omitempty"`
}

// ForDatabase returns a qualifier for a database handle.
func ForDatabase(database string) Qualifier {
	return Qualifier{Database: database}
}

// ForCollection returns a qualifier for a collection handle.
func ForCollection(database, collection string) Qualifier {
	return Qualifier{Database: database, Collection: collection}
}

// String implements fmt.Stringer.
func (q Qualifier) String() string {
	if q.Collection == "" {
		return q.Database
	}
	return q.Database + "." + q.Collection
}

// Validate checks the qualifier. needCollection makes the collection name
// mandatory. Failures are storage.ErrUnresolvedQualifier naming the fields.
func (q Qualifier) Validate(needCollection bool) error {
	errs := validator.StructWithLang(q, validator.LangEN)
	if needCollection && q.Collection == "" {
		if errs == nil {
			errs = &validator.ValidationErrors{}
		}
		errs.Append(validator.VarWithLang(q.Collection, "collection", "required", validator.LangEN))
	}
	if !errs.HasErrors() {
		return nil
	}

	return storage.ErrUnresolvedQualifier.
		WithMessage(fmt.Sprintf("cannot resolve mongodb handle for %q", q.String())).
		WithContext(map[string]interface{}{"fields": errs.Fields()}).
		WithCause(errs)
}
