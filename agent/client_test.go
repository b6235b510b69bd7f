package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/capability"
)

type fakeChat struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeChat) ChatJSON(ctx context.Context, messages []capability.ChatMessage, temperature float32, maxTokens int) (string, capability.Usage, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, capability.Usage{PromptTokens: 10}, err
}

func TestGenerateStructuredParsesPlainJSON(t *testing.T) {
	chat := &fakeChat{responses: []string{`{"edl":[{"start":0,"end":2,"type":"keep"}]}`}}
	c := New(chat)

	plan, _, err := c.GenerateStructured(context.Background(), []capability.ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Len(t, plan.EDL, 1)
	require.Equal(t, "keep", plan.EDL[0].Type)
}

func TestGenerateStructuredStripsMarkdownFences(t *testing.T) {
	chat := &fakeChat{responses: []string{"```json\n{\"edl\":[]}\n```"}}
	c := New(chat)

	plan, _, err := c.GenerateStructured(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, plan.EDL)
}

func TestGenerateStructuredRepairsTrailingCommaAndUnbalancedBraces(t *testing.T) {
	chat := &fakeChat{responses: []string{`{"edl":[{"start":0,"end":2,"type":"keep"},]`}}
	c := New(chat)

	plan, _, err := c.GenerateStructured(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, plan.EDL, 1)
}

func TestGenerateStructuredRetriesOnTransientThenSucceeds(t *testing.T) {
	chat := &fakeChat{
		errs:      []error{apierrors.NewDependencyUnavailable("boom", nil), nil},
		responses: []string{"", `{"edl":[]}`},
	}
	c := New(chat)

	plan, _, err := c.GenerateStructured(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, plan.EDL)
	require.Equal(t, 2, chat.calls)
}

func TestGenerateStructuredFailsOnUnparsableGarbage(t *testing.T) {
	chat := &fakeChat{responses: []string{"not json at all {{{"}}
	c := New(chat)

	_, _, err := c.GenerateStructured(context.Background(), nil)
	require.Error(t, err)
}

func TestStripMarkdownFencesNoOpWithoutFence(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripMarkdownFences(`{"a":1}`))
}

func TestRepairJSONRejectsMoreClosingThanOpening(t *testing.T) {
	_, err := repairJSON(`{}}`)
	require.Error(t, err)
}

func TestRemoveTrailingCommasPreservesCommasInsideStrings(t *testing.T) {
	out := removeTrailingCommas(`{"a":"x, y",}`)
	require.Equal(t, `{"a":"x, y"}`, out)
}
