package agent

import (
	"context"
	"sync"
)

// fakeModel returns scripted outputs keyed by schema name, or "text" for
// free-text calls. The last output of a script repeats once it runs out.
type fakeModel struct {
	mu      sync.Mutex
	outputs map[string][]string
	errs    map[string]error
	calls   []fakeCall
}

type fakeCall struct {
	Channel  string
	Messages []ChatMessage
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		outputs: make(map[string][]string),
		errs:    make(map[string]error),
	}
}

func channelOf(schema *OutputSchema) string {
	if schema == nil {
		return "text"
	}
	return schema.Name
}

func (m *fakeModel) script(channel string, outputs ...string) *fakeModel {
	m.outputs[channel] = append(m.outputs[channel], outputs...)
	return m
}

func (m *fakeModel) fail(channel string, err error) *fakeModel {
	m.errs[channel] = err
	return m
}

func (m *fakeModel) Invoke(ctx context.Context, messages []ChatMessage, schema *OutputSchema) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	channel := channelOf(schema)
	m.calls = append(m.calls, fakeCall{Channel: channel, Messages: messages})
	if err := m.errs[channel]; err != nil {
		return "", err
	}
	queue := m.outputs[channel]
	if len(queue) == 0 {
		return "", nil
	}
	out := queue[0]
	if len(queue) > 1 {
		m.outputs[channel] = queue[1:]
	}
	return out, nil
}

func (m *fakeModel) callsTo(channel string) []fakeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []fakeCall
	for _, c := range m.calls {
		if c.Channel == channel {
			out = append(out, c)
		}
	}
	return out
}

type fakeSearcher struct {
	queries []string
	result  string
}

func (s *fakeSearcher) Search(ctx context.Context, query string) string {
	s.queries = append(s.queries, query)
	return s.result
}

const (
	plannerJSON  = `{"search_term":"capital of France","overall_strategy":"search","additional_information":"none"}`
	selectorJSON = `{"selected_page_url":"https://en.wikipedia.org/wiki/Paris","description":"Paris","reason_for_selection":"authoritative"}`
	passJSON     = `{"feedback":"looks good","pass_review":true,"comprehensive":true,"citations_provided":true,"relevant_to_research_question":true}`
	failJSON     = `{"feedback":"missing citations","pass_review":false,"comprehensive":true,"citations_provided":false,"relevant_to_research_question":true}`
)

func routeTo(next string) string {
	return `{"next_agent":"` + next + `"}`
}
