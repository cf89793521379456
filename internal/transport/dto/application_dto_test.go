package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivisions_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Divisions
	}{
		{"Strings", `["Engineering","Design"]`, Divisions{"Engineering", "Design"}},
		{"Mixed scalars", `["a", 7, 2.5, true, false]`, Divisions{"a", "7", "2.5", "true", "false"}},
		{"Nested values", `[{"b": 1,  "a": [1, 2]}, [1, "x"]]`, Divisions{`{"b":1,"a":[1,2]}`, `[1,"x"]`}},
		{"Null entries dropped", `[null, "a", null]`, Divisions{"a"}},
		{"Bare string", `"Engineering"`, Divisions{"Engineering"}},
		{"Bare number", `42`, Divisions{"42"}},
		{"Bare object", `{"k": "v"}`, Divisions{`{"k":"v"}`}},
		{"Null", `null`, Divisions{}},
		{"Empty array", `[]`, Divisions{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req ApplyRequest
			require.NoError(t, json.Unmarshal([]byte(`{"divisions": `+tc.input+`}`), &req))
			assert.Equal(t, tc.expected, req.Divisions)
		})
	}
}

func TestDivisions_Missing(t *testing.T) {
	var req ApplyRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email": "a@b.co"}`), &req))
	req.Normalize()
	assert.Equal(t, Divisions{}, req.Divisions)
}

func TestDivisions_InvalidJSON(t *testing.T) {
	var req ApplyRequest
	assert.Error(t, json.Unmarshal([]byte(`{"divisions": [1,}`), &req))
}

func TestApplyRequest_Normalize(t *testing.T) {
	req := ApplyRequest{
		FirstName: "  Ada\t",
		LastName:  "Lovelace ",
		Email:     "  Ada@Example.COM ",
		Phone:     " +1 555 0100 ",
		// "e" followed by a combining acute accent composes to a single rune.
		Major:     "Cafe\u0301",
		Divisions: Divisions{" Design ", "Engineering", "Design", "", "   "},
		Convince:  "\n Engines \n",
	}

	req.Normalize()
	assert.Equal(t, "Ada", req.FirstName)
	assert.Equal(t, "Lovelace", req.LastName)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "+1 555 0100", req.Phone)
	assert.Equal(t, "Caf\u00e9", req.Major)
	assert.Equal(t, Divisions{"Design", "Engineering"}, req.Divisions)
	assert.Equal(t, "Engines", req.Convince)

	once := req
	once.Divisions = append(Divisions{}, req.Divisions...)
	req.Normalize()
	assert.Equal(t, once, req, "Normalize must be idempotent")
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	assert.Equal(t, "2025-03-01T11:00:00Z", FormatTimestamp(time.Date(2025, 3, 1, 12, 0, 0, 0, loc)))
}
