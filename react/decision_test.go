package react

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeDecision_Action(t *testing.T) {
	d, err := DecodeDecision(`{
		"thought": "need the schedule",
		"action": {
			"name": "load_upcoming_nba_games_and_bets",
			"reason": "nothing loaded yet",
			"input": {}
		}
	}`)
	assert.NoError(t, err)
	assert.NotNil(t, d.Action)
	assert.Equal(t, "load_upcoming_nba_games_and_bets", d.Action.Name)
	assert.Equal(t, "need the schedule", d.Thought)
	assert.Nil(t, d.Action.Input, "empty input object decodes to nil args")
	assert.False(t, d.Answered)
}

func TestDecodeDecision_ActionWithInput(t *testing.T) {
	d, err := DecodeDecision(`{
		"thought": "stats missing",
		"action": {
			"name": "load_players_stats",
			"input": {"player_ids": ["1628973"]}
		}
	}`)
	assert.NoError(t, err)
	assert.NotNil(t, d.Action)
	ids, ok := d.Action.Input["player_ids"].([]any)
	assert.True(t, ok)
	assert.Equal(t, "1628973", ids[0])
}

func TestDecodeDecision_Answer(t *testing.T) {
	d, err := DecodeDecision("```json\n{\"thought\": \"all loaded\", \"answer\": \"Data is ready.\"}\n```")
	assert.NoError(t, err)
	assert.True(t, d.Answered)
	assert.Equal(t, "Data is ready.", d.Answer)
	assert.Nil(t, d.Action)
}

func TestDecodeDecision_EmptyAnswerStillAnswered(t *testing.T) {
	d, err := DecodeDecision(`{"answer": ""}`)
	assert.NoError(t, err)
	assert.True(t, d.Answered)
	assert.Equal(t, "", d.Answer)
}

func TestDecodeDecision_Failures(t *testing.T) {
	cases := map[string]string{
		"not json":          "I think we should load the games first.",
		"array":             `[1, 2, 3]`,
		"neither key":       `{"thought": "hmm"}`,
		"action w/o a name": `{"action": {"reason": "because"}}`,
	}
	for label, raw := range cases {
		_, err := DecodeDecision(raw)
		assert.Error(t, err, label)
	}
}
