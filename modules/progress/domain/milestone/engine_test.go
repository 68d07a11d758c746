package milestone

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func standardConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(uuid.New(), "valve", WorkflowDiscrete, []Definition{
		{Name: "Receive", Weight: 10, Order: 1},
		{Name: "Install", Weight: 60, Order: 2},
		{Name: "Punch", Weight: 10, Order: 3},
		{Name: "Test", Weight: 10, Order: 4},
		{Name: "Restore", Weight: 10, Order: 5},
	})
	require.NoError(t, err)
	return cfg
}

func hybridConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(uuid.New(), "threaded_pipe", WorkflowHybrid, []Definition{
		{Name: "Fabricate", Weight: 10, Order: 1, IsPartial: true},
		{Name: "Install", Weight: 60, Order: 2},
		{Name: "Punch", Weight: 10, Order: 3},
		{Name: "Test", Weight: 10, Order: 4},
		{Name: "Restore", Weight: 10, Order: 5},
	})
	require.NoError(t, err)
	return cfg
}

func TestValidateUpdate_PartialRange(t *testing.T) {
	cfg := hybridConfig(t)

	tests := []struct {
		name    string
		value   Value
		wantErr error
	}{
		{"zero is valid", Number(0), nil},
		{"hundred is valid", Number(100), nil},
		{"midpoint is valid", Number(42.5), nil},
		{"negative fails", Number(-1), ErrOutOfRange},
		{"over hundred fails", Number(100.01), ErrOutOfRange},
		{"NaN fails", Number(math.NaN()), ErrTypeMismatch},
		{"positive infinity fails", Number(math.Inf(1)), ErrTypeMismatch},
		{"negative infinity fails", Number(math.Inf(-1)), ErrTypeMismatch},
		{"boolean fails", Bool(true), ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(cfg, "Fabricate", tt.value)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate_DiscreteTypeStrictness(t *testing.T) {
	cfg := standardConfig(t)

	require.NoError(t, ValidateUpdate(cfg, "Install", Bool(true)))
	require.NoError(t, ValidateUpdate(cfg, "Install", Bool(false)))

	// Numeric and string encodings of a boolean are rejected outright.
	require.ErrorIs(t, ValidateUpdate(cfg, "Install", Number(1)), ErrTypeMismatch)
	require.ErrorIs(t, ValidateUpdate(cfg, "Install", Number(0)), ErrTypeMismatch)
	require.ErrorIs(t, ValidateUpdate(cfg, "Install", ParseValue(json.RawMessage(`"true"`))), ErrTypeMismatch)
	// A JSON null must not decode to false and sneak past as a rollback.
	require.ErrorIs(t, ValidateUpdate(cfg, "Install", ParseValue(json.RawMessage(`null`))), ErrTypeMismatch)
}

func TestValidateUpdate_NameChecks(t *testing.T) {
	cfg := standardConfig(t)

	require.ErrorIs(t, ValidateUpdate(cfg, "", Bool(true)), ErrEmptyName)
	require.ErrorIs(t, ValidateUpdate(cfg, "   ", Bool(true)), ErrEmptyName)
	require.ErrorIs(t, ValidateUpdate(cfg, "Nonexistent", Bool(true)), ErrNotFound)
	// Milestone names match case-sensitively.
	require.ErrorIs(t, ValidateUpdate(cfg, "install", Bool(true)), ErrNotFound)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		previous Value
		next     Value
		want     Action
	}{
		{"false to true", Bool(false), Bool(true), ActionComplete},
		{"true to false", Bool(true), Bool(false), ActionRollback},
		{"zero to positive", Number(0), Number(50), ActionComplete},
		{"positive to zero", Number(50), Number(0), ActionRollback},
		{"positive to positive", Number(50), Number(75), ActionUpdate},
		{"unset to true", Value{}, Bool(true), ActionComplete},
		{"unset to number", Value{}, Number(25), ActionComplete},
		{"true to true", Bool(true), Bool(true), ActionUpdate},
		{"false to false", Bool(false), Bool(false), ActionUpdate},
		{"equal nonzero numbers", Number(40), Number(40), ActionUpdate},
		{"zero to zero", Number(0), Number(0), ActionUpdate},
		{"bool to number", Bool(true), Number(100), ActionUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.previous, tt.next))
		})
	}
}

func TestPercentComplete_DiscreteScenario(t *testing.T) {
	cfg := standardConfig(t)
	state := State{
		"Receive": Bool(true),
		"Install": Bool(false),
		"Punch":   Bool(false),
		"Test":    Bool(false),
		"Restore": Bool(false),
	}
	require.InDelta(t, 10.0, PercentComplete(state, cfg), 1e-9)
}

func TestPercentComplete_HybridScenario(t *testing.T) {
	cfg := hybridConfig(t)
	state := State{"Fabricate": Number(50)}
	// Fabricate contributes weight 10 * 0.5 = 5.
	require.InDelta(t, 5.0, PercentComplete(state, cfg), 1e-9)

	state = state.With("Install", Bool(true))
	require.InDelta(t, 65.0, PercentComplete(state, cfg), 1e-9)
}

func TestPercentComplete_NumericDiscreteEncoding(t *testing.T) {
	cfg := standardConfig(t)
	// Discrete milestones stored as 0/100 numbers count as satisfied when
	// nonzero.
	state := State{"Receive": Number(100), "Install": Number(0)}
	require.InDelta(t, 10.0, PercentComplete(state, cfg), 1e-9)
}

func TestPercentComplete_EmptyConfig(t *testing.T) {
	require.Zero(t, PercentComplete(State{"anything": Bool(true)}, Config{}))
}

func TestNewConfig_WeightValidation(t *testing.T) {
	tenantID := uuid.New()

	_, err := NewConfig(tenantID, "bad", WorkflowDiscrete, []Definition{
		{Name: "Receive", Weight: 10},
		{Name: "Install", Weight: 60},
	})
	require.ErrorIs(t, err, ErrBadWeightSum)

	_, err = NewConfig(tenantID, "dup", WorkflowDiscrete, []Definition{
		{Name: "Receive", Weight: 50},
		{Name: "Receive", Weight: 50},
	})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = NewConfig(tenantID, "neg", WorkflowDiscrete, []Definition{
		{Name: "Receive", Weight: -10},
		{Name: "Install", Weight: 110},
	})
	require.ErrorIs(t, err, ErrBadWeight)

	_, err = NewConfig(tenantID, "", WorkflowDiscrete, []Definition{{Name: "Receive", Weight: 100}})
	require.ErrorIs(t, err, ErrEmptyConfigName)

	_, err = NewConfig(tenantID, "none", WorkflowDiscrete, nil)
	require.ErrorIs(t, err, ErrNoDefinitions)

	_, err = NewConfig(tenantID, "wf", "percent", []Definition{{Name: "Receive", Weight: 100}})
	require.ErrorIs(t, err, ErrBadWorkflowType)
}

func TestParseValue(t *testing.T) {
	require.Equal(t, KindBool, ParseValue(json.RawMessage(`true`)).Kind())
	require.Equal(t, KindNumber, ParseValue(json.RawMessage(`42.5`)).Kind())
	require.Equal(t, KindOther, ParseValue(json.RawMessage(`"true"`)).Kind())
	require.Equal(t, KindOther, ParseValue(json.RawMessage(`null`)).Kind())
	require.Equal(t, KindOther, ParseValue(json.RawMessage(`[1]`)).Kind())
}

func TestStateJSONRoundTrip(t *testing.T) {
	state := State{"Receive": Bool(true), "Fabricate": Number(37.5)}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, KindBool, decoded.Get("Receive").Kind())
	require.True(t, decoded.Get("Receive").Boolean())
	require.Equal(t, KindNumber, decoded.Get("Fabricate").Kind())
	require.InDelta(t, 37.5, decoded.Get("Fabricate").Float(), 1e-9)
}
