package prompt

import (
	"fmt"
	"sort"
	"strings"

	"biomeai-be/internal/constant"
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/rag/state"
)

// Builder assembles the messages sent to the model for each conversation action.
type Builder struct {
	systemPrompt string
}

// NewBuilder creates a prompt builder around the analyst persona.
func NewBuilder(systemPrompt string) *Builder {
	if systemPrompt == "" {
		systemPrompt = constant.AnalystSystemPrompt
	}
	return &Builder{systemPrompt: systemPrompt}
}

// SystemMessages returns the persona and, when chunks exist, the report context.
func (b *Builder) SystemMessages(chunks []string) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: b.systemPrompt}}
	if len(chunks) == 0 {
		return messages
	}

	sections := make([]string, len(chunks))
	for i, c := range chunks {
		sections[i] = constant.ReportSectionPrefix + c
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: constant.ReportContextHeader + strings.Join(sections, "\n\n"),
	})
	return messages
}

// StageMessages builds the single-turn prompt for a stage synthesis.
func (b *Builder) StageMessages(action state.Action, chunks []string, metadata map[string]interface{}) ([]llm.Message, error) {
	var prompt strings.Builder

	switch action {
	case state.ActionDietPrediction:
		prompt.WriteString("From the bacterial composition in this microbiome report, infer what the person most likely eats day to day.\n")
		prompt.WriteString("Name 3-5 concrete dietary patterns (fiber, protein sources, sugar, fermented foods, processed food) and tie each one to a specific bacterium or metric from the report.\n\n")
	case state.ActionSymptomsPrediction:
		prompt.WriteString("From the bacterial composition in this microbiome report, predict which digestive symptoms the person may experience.\n")
		prompt.WriteString("Cover 3-5 likely symptoms (bloating, gas, irregularity, reflux, food sensitivities) and tie each to the bacteria that would cause it. Account for the diet they described.\n\n")
	case state.ActionExecutiveSummary:
		prompt.WriteString("Analyze this microbiome report and provide an executive summary with actionable insights.\n\n")
	default:
		return nil, fmt.Errorf("no stage prompt for action %q", action)
	}

	writeLifestyle(&prompt, metadata)
	writeReport(&prompt, chunks)

	if action == state.ActionExecutiveSummary {
		prompt.WriteString("Please provide:\n")
		prompt.WriteString("1. Key findings from the report\n")
		prompt.WriteString("2. Notable patterns or concerns\n")
		prompt.WriteString("3. Personalized recommendations based on their lifestyle\n")
		prompt.WriteString("4. One specific actionable next step they could consider\n\n")
		prompt.WriteString("Keep the response engaging and supportive, focusing on practical insights.")
	} else {
		prompt.WriteString("Write in second person, keep it under 800 characters, and do not ask a question at the end.")
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: b.systemPrompt},
		{Role: llm.RoleUser, Content: prompt.String()},
	}, nil
}

var lifestyleLabels = []struct {
	key   string
	label string
}{
	{"sample_date", "Sample date"},
	{"sample_age_months", "Sample age (months)"},
	{"lab_name", "Lab"},
	{state.KeyAntibiotics, "Recent antibiotics"},
	{state.KeyDiet, "Diet"},
	{state.KeySymptoms, "Digestive symptoms"},
}

func writeLifestyle(prompt *strings.Builder, metadata map[string]interface{}) {
	var lines []string
	for _, l := range lifestyleLabels {
		if v, ok := metadata[l.key]; ok && v != nil && fmt.Sprint(v) != "" {
			lines = append(lines, fmt.Sprintf("%s: %v", l.label, v))
		}
	}
	if diversity, ok := metadata["diversity_metrics"].(map[string]interface{}); ok && len(diversity) > 0 {
		keys := make([]string, 0, len(diversity))
		for k := range diversity {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("Diversity %s: %v", k, diversity[k]))
		}
	}

	prompt.WriteString("User Lifestyle Context:\n")
	if len(lines) == 0 {
		prompt.WriteString("No additional lifestyle information provided.\n\n")
		return
	}
	prompt.WriteString(strings.Join(lines, "\n"))
	prompt.WriteString("\n\n")
}

func writeReport(prompt *strings.Builder, chunks []string) {
	prompt.WriteString("Microbiome Report Content:\n")
	if len(chunks) == 0 {
		prompt.WriteString("(no report sections available)\n\n")
		return
	}
	for _, c := range chunks {
		prompt.WriteString(constant.ReportSectionPrefix)
		prompt.WriteString(c)
		prompt.WriteString("\n\n")
	}
}
