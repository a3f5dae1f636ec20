package config

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource []byte

type schema struct {
	ctx *cue.Context
	def cue.Value
}

var (
	schemaOnce   sync.Once
	loadedSchema *schema
	schemaErr    error
)

func compiledSchema() (*schema, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()

		v := ctx.CompileBytes(schemaSource)
		if v.Err() != nil {
			schemaErr = fmt.Errorf("compiling schema: %w", v.Err())
			return
		}

		def := v.LookupPath(cue.ParsePath("#Config"))
		if def.Err() != nil {
			schemaErr = fmt.Errorf("looking up #Config definition: %w", def.Err())
			return
		}

		loadedSchema = &schema{ctx: ctx, def: def}
	})

	return loadedSchema, schemaErr
}

// ValidateDocument checks a JSON configuration document against the
// embedded schema.
func ValidateDocument(jsonBytes []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	data := s.ctx.CompileBytes(jsonBytes)
	if data.Err() != nil {
		return fmt.Errorf("%w: compiling document: %w", ErrInvalidConfig, data.Err())
	}

	unified := s.def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: schema validation failed: %w", ErrInvalidConfig, err)
	}

	return nil
}
