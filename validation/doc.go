// Package validation provides input validation for configuration structs
// and service payloads.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// recommended for payload types; the fluent collector covers cross-field
// rules tags cannot express.
//
// # Struct Tag Validation
//
//	type SwarmParams struct {
//	    Population int     `validate:"gte=2"`
//	    Inertia    float64 `validate:"gt=0,lte=1"`
//	}
//	err := validation.Validate(params)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Min("population", cfg.Population, 2)
//	v.Custom(cfg.TournamentSize <= cfg.Population, "tournament_size", "must not exceed population")
//	err := v.Validate()
package validation
