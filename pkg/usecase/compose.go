package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
)

//go:embed prompt/chat_prompt.md
var chatPromptTmpl string

//go:embed prompt/vision_prompt.md
var visionPromptTmpl string

var (
	chatPrompt   = template.Must(template.New("chat_prompt").Parse(chatPromptTmpl))
	visionPrompt = template.Must(template.New("vision_prompt").Parse(visionPromptTmpl))
)

// DefaultPersona renders the assistant identity line for a vehicle.
func DefaultPersona(vehicle model.VehicleProfile) string {
	name := vehicle.DisplayName()
	if name == "" {
		return "You are Glovebox, an expert mechanic."
	}
	return fmt.Sprintf("You are Glovebox, an expert mechanic for a %s.", name)
}

// ComposePrompt builds the full prompt for a text turn: persona, the
// entire reference text, every log entry in insertion order, and the
// verbatim user question. Pure: identical inputs yield identical output.
func ComposePrompt(snapshot *model.KnowledgeSnapshot, userQuery, persona string) string {
	var buf bytes.Buffer
	_ = chatPrompt.Execute(&buf, map[string]string{
		"Persona":    persona,
		"Reference":  snapshot.Reference,
		"ServiceLog": renderServiceLog(snapshot.Logs),
		"Question":   userQuery,
	})
	return buf.String()
}

// ComposeVisionPrompt builds the prompt for an image turn: the typed
// question is replaced by an observer-supplied description of what the
// camera saw.
func ComposeVisionPrompt(snapshot *model.KnowledgeSnapshot, observation, persona string) string {
	var buf bytes.Buffer
	_ = visionPrompt.Execute(&buf, map[string]string{
		"Persona":     persona,
		"Reference":   snapshot.Reference,
		"Observation": observation,
	})
	return buf.String()
}

// renderServiceLog formats entries as "- [date] text" lines. No
// truncation or filtering: the whole log travels on every turn.
func renderServiceLog(logs []*model.LogEntry) string {
	lines := make([]string, 0, len(logs))
	for _, entry := range logs {
		lines = append(lines, fmt.Sprintf("- [%s] %s", entry.DateString(), entry.Text))
	}
	return strings.Join(lines, "\n")
}
