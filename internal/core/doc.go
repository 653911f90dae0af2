// Package core provides the header inference and form generation engine.
//
// The package knows nothing about spreadsheets as files or about HTTP. It
// reads and writes through the [Document] interface, so the same engine
// serves the web server, the command line tool and tests.
//
// # Pipeline
//
// A run turns one schedule sheet into one form sheet per entity:
//
//  1. [HeaderLocator] finds the header row by keyword, or falls back to a
//     row number supplied by the user.
//  2. [Resolve] maps each semantic field of the template variant to a
//     column, trying the field's label variants in order.
//  3. [RowIterator] walks the data rows and accepts one row per distinct
//     identifier. Continuation rows and repeats are skipped.
//  4. [Project] reads an accepted row into an [OutputRecord], normalizing
//     every value with [Normalize].
//  5. [RecordEmitter] clones the template sheet and writes the record.
//
// [Generator.Run] drives these steps as a state machine and reports
// [Progress] after every transition and every data row.
//
// # Template Definitions
//
// Variants are plain [TemplateDefinition] values collected in a [Registry].
// Nothing is registered globally; see the templates subpackage for the
// built-in Instrument and Valve layouts.
//
//	reg := core.MustRegistry(templates.Instrument(), templates.Valve())
//	gen := core.NewGenerator(reg, core.GeneratorConfig{})
//	res, err := gen.Run(ctx, core.RunRequest{Document: doc, Options: opts})
//
// # Background Runs
//
// [Service] wraps the generator for servers: runs start asynchronously,
// are bounded by a [RunLimiter], stream progress through
// [Service.SubscribeProgress] and are recorded by a [RunRecorder].
//
// # Error Handling
//
// Fatal errors carry sentinels such as [ErrHeaderNotFound] and are mapped to
// coded user messages with [MapError]. Errors on a single row never abort a
// run; they are reported as [RowOutcome] values with [OutcomeFailed].
package core
