package chatmodel

import (
	"sort"

	"github.com/modelkit/geminichat/geminiapi"
)

// Options are the generation parameters for a call. A ChatModel holds a
// default Options; callers may pass a per-call Options whose set fields
// override the defaults field by field.
type Options struct {
	Model           string
	Temperature     *float64
	TopP            *float64
	TopK            *int
	MaxOutputTokens *int
	CandidateCount  *int
	StopSequences   []string
	SafetySettings  []geminiapi.SafetySetting

	// Functions names the registered functions enabled for calls using
	// these options. Default-scope names persist across calls; call-scope
	// names are active only for the one run they are passed with.
	Functions []string
}

// merge layers override on top of base: any field set in override wins.
// Neither input is mutated.
func mergeOptions(base Options, override *Options) Options {
	out := base
	if override == nil {
		return out
	}
	if override.Model != "" {
		out.Model = override.Model
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.TopP != nil {
		out.TopP = override.TopP
	}
	if override.TopK != nil {
		out.TopK = override.TopK
	}
	if override.MaxOutputTokens != nil {
		out.MaxOutputTokens = override.MaxOutputTokens
	}
	if override.CandidateCount != nil {
		out.CandidateCount = override.CandidateCount
	}
	if len(override.StopSequences) > 0 {
		out.StopSequences = override.StopSequences
	}
	if len(override.SafetySettings) > 0 {
		out.SafetySettings = override.SafetySettings
	}
	return out
}

// resolveFunctions computes the enabled-function set for one run: the
// union of the default-scope and call-scope names, deduplicated and
// sorted. Set semantics make resolution idempotent and order-independent.
func resolveFunctions(defaults Options, override *Options) []string {
	seen := make(map[string]struct{})
	for _, name := range defaults.Functions {
		seen[name] = struct{}{}
	}
	if override != nil {
		for _, name := range override.Functions {
			seen[name] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// generationConfig maps resolved options onto the wire record, returning
// nil when nothing is set.
func (o Options) generationConfig() *geminiapi.GenerationConfig {
	if o.Temperature == nil && o.TopP == nil && o.TopK == nil &&
		o.MaxOutputTokens == nil && o.CandidateCount == nil && len(o.StopSequences) == 0 {
		return nil
	}
	return &geminiapi.GenerationConfig{
		StopSequences:   o.StopSequences,
		CandidateCount:  o.CandidateCount,
		MaxOutputTokens: o.MaxOutputTokens,
		Temperature:     o.Temperature,
		TopP:            o.TopP,
		TopK:            o.TopK,
	}
}
