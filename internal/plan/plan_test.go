package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gozen/internal/agent"
)

func TestParseGoldenPlan(t *testing.T) {
	text := "BUILD PLAN: Foo\nTARGET DIR: .\nSTACK: Go\n[coder] C1: do X\n[debug] D1: fix"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	assert.Equal(t, "Foo", p.Name)
	assert.Equal(t, ".", p.TargetDir)
	assert.Equal(t, "Go", p.Stack)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "coder", p.Tasks[0].Agent)
	assert.Equal(t, "C1", p.Tasks[0].Label)
	assert.Equal(t, "do X", p.Tasks[0].Description)
	assert.Equal(t, "debug", p.Tasks[1].Agent)
}

func TestParseNoHeader(t *testing.T) {
	assert.Nil(t, Parse("just a normal answer with [coder] C1: something", agent.DefaultRegistry()))
}

func TestParseZeroTasksIsNoPlan(t *testing.T) {
	text := "BUILD PLAN: Empty\nTARGET DIR: .\nSTACK: Go\nno task lines here"
	assert.Nil(t, Parse(text, agent.DefaultRegistry()))
}

func TestParseDropsUnknownAgents(t *testing.T) {
	text := "BUILD PLAN: Mixed\nTARGET DIR: app\nSTACK: Node.js\n" +
		"[intern] I1: should vanish\n[coder] C1: keep me"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "coder", p.Tasks[0].Agent)
}

func TestParseOnlyUnknownAgentsIsNoPlan(t *testing.T) {
	text := "BUILD PLAN: X\n[intern] I1: nope\n[ghost] G1: nope"
	assert.Nil(t, Parse(text, agent.DefaultRegistry()))
}

func TestParseDefaults(t *testing.T) {
	text := "some prose\nBUILD PLAN:\n[coder] C1: build it"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	assert.Equal(t, "project", p.Name)
	assert.Equal(t, ".", p.TargetDir)
	assert.Equal(t, "unspecified", p.Stack)
}

func TestParseBlankHeaderValuesKeepDefaults(t *testing.T) {
	// Labels with only trailing whitespace must not swallow the next line.
	text := "BUILD PLAN:   \nTARGET DIR: \nSTACK:\t\n[coder] C1: build it"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	assert.Equal(t, "project", p.Name)
	assert.Equal(t, ".", p.TargetDir)
	assert.Equal(t, "unspecified", p.Stack)
	require.Len(t, p.Tasks, 1)
}

func TestParseCaseInsensitiveTaskLines(t *testing.T) {
	text := "BUILD PLAN: Case\n[CODER] C1: shout"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	assert.Equal(t, "coder", p.Tasks[0].Agent)
}

func TestParseInsideFencedBlock(t *testing.T) {
	text := "Here is the plan:\n```\nBUILD PLAN: Fenced\nTARGET DIR: svc\nSTACK: Go\n[architect] A1: scaffold\n[coder] C2: implement\n```\n"

	p := Parse(text, agent.DefaultRegistry())
	require.NotNil(t, p)
	assert.Equal(t, "Fenced", p.Name)
	assert.Equal(t, "svc", p.TargetDir)
	require.Len(t, p.Tasks, 2)
}

func TestFallbackPlan(t *testing.T) {
	p := Fallback("make a web server")
	require.Len(t, p.Tasks, 3)
	assert.Equal(t, "architect", p.Tasks[0].Agent)
	assert.Equal(t, "coder", p.Tasks[1].Agent)
	assert.Equal(t, "debug", p.Tasks[2].Agent)
	assert.Contains(t, p.Tasks[1].Description, "make a web server")
}

func TestStringRoundTrips(t *testing.T) {
	p := Fallback("anything")
	out := p.String()
	reparsed := Parse(out, agent.DefaultRegistry())
	require.NotNil(t, reparsed)
	assert.Equal(t, len(p.Tasks), len(reparsed.Tasks))
}
