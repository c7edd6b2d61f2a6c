package events

import "github.com/invopop/jsonschema"

// RecordSchema describes the frame payload accepted by [Classify]. It is
// meant for backend implementers validating their output.
func RecordSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := reflector.Reflect(&Record{})
	schema.Title = "Discussion frame"
	return schema
}
