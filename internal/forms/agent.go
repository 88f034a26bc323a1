package forms

import "github.com/anonymeye/apex-platform/pkg/types"

// ApplyConnectionChange switches the agent form to another connection.
// Picking a different connection clears any previously selected model
// reference, since model refs are scoped to one connection.
func ApplyConnectionChange(in *types.AgentInput, connectionID string) {
	if in.ConnectionID == connectionID {
		return
	}
	in.ConnectionID = connectionID
	in.ModelRefID = ""
}

// ModelOptions filters the model-reference choices offered by the agent
// form to those belonging to the selected connection. With no connection
// selected there are no options.
func ModelOptions(models []types.ModelRef, connectionID string) []types.ModelRef {
	if connectionID == "" {
		return nil
	}
	var out []types.ModelRef
	for _, m := range models {
		if m.ConnectionID == connectionID {
			out = append(out, m)
		}
	}
	return out
}
