package edl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/agent"
)

func TestValidateClampsAndDropsSegments(t *testing.T) {
	plan := agent.Plan{
		EDL: []agent.Segment{
			{Start: -5, End: 10, Type: "keep"},   // clamp start to 0
			{Start: 5, End: 200, Type: "keep"},    // clamp end to source duration
			{Start: 5, End: 5.05, Type: "keep"},   // too short, dropped
			{Start: 20, End: 10, Type: "keep"},    // start >= end, dropped
		},
		StoryAnalysis: agent.StoryAnalysis{HookTimestamp: 1, ClimaxTimestamp: 50},
	}
	result := Validate(plan, 100)
	require.True(t, result.IsValid)
	require.Len(t, result.SanitizedEDL, 2)
	require.Equal(t, 0.0, result.SanitizedEDL[0].Start)
	require.Equal(t, 100.0, result.SanitizedEDL[1].End)
}

func TestValidateWarnsOnOverlapWithoutFailing(t *testing.T) {
	plan := agent.Plan{
		EDL: []agent.Segment{
			{Start: 0, End: 10, Type: "keep"},
			{Start: 5, End: 15, Type: "keep"},
		},
		StoryAnalysis: agent.StoryAnalysis{HookTimestamp: 1, ClimaxTimestamp: 10},
	}
	result := Validate(plan, 100)
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
}

func TestValidateWarnsOnLowCoverage(t *testing.T) {
	plan := agent.Plan{
		EDL:           []agent.Segment{{Start: 0, End: 1, Type: "keep"}},
		StoryAnalysis: agent.StoryAnalysis{HookTimestamp: 0, ClimaxTimestamp: 0},
	}
	result := Validate(plan, 100)
	require.True(t, result.IsValid)
	found := false
	for _, w := range result.Warnings {
		if w == "coverage 0.01 is below 0.5" {
			found = true
		}
	}
	require.True(t, found)
}

func TestValidateFailsOnOutOfRangeStoryAnalysis(t *testing.T) {
	plan := agent.Plan{
		EDL:           []agent.Segment{{Start: 0, End: 10, Type: "keep"}},
		StoryAnalysis: agent.StoryAnalysis{HookTimestamp: -1, ClimaxTimestamp: 500},
	}
	result := Validate(plan, 100)
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
}

func TestValidateFailsOnBadKeyMoment(t *testing.T) {
	plan := agent.Plan{
		EDL:           []agent.Segment{{Start: 0, End: 10, Type: "keep"}},
		StoryAnalysis: agent.StoryAnalysis{HookTimestamp: 1, ClimaxTimestamp: 2},
		KeyMoments:    []agent.KeyMoment{{Start: 10, End: 5}},
	}
	result := Validate(plan, 100)
	require.False(t, result.IsValid)
}

func TestConvertDropsNonKeepAndSortsByVideoThenStart(t *testing.T) {
	segments := []agent.Segment{
		{Start: 10, End: 15, Type: "keep", VideoID: "b"},
		{Start: 0, End: 5, Type: "keep", VideoID: "a"},
		{Start: 1, End: 2, Type: "skip", VideoID: "a"},
		{Start: 3, End: 4, Type: "transition", VideoID: "a"},
	}
	render, transitions := Convert(segments)
	require.Len(t, render, 2)
	require.Equal(t, "a", render[0].VideoID)
	require.Equal(t, "b", render[1].VideoID)
	require.Len(t, transitions, 1)
}

func TestConvertMergesTouchingSameSourceSegments(t *testing.T) {
	segments := []agent.Segment{
		{Start: 0, End: 5, Type: "keep", VideoID: "a"},
		{Start: 5, End: 10, Type: "keep", VideoID: "a"},
		{Start: 8, End: 20, Type: "keep", VideoID: "a"},
	}
	render, _ := Convert(segments)
	require.Len(t, render, 1)
	require.Equal(t, 0.0, render[0].Start)
	require.Equal(t, 20.0, render[0].End)
}
