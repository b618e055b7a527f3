package calc

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"2^10", 1024},
		{"2^3^2", 512},
		{"-5 + 3", -2},
		{"--5", 5},
		{"-2^2", -4},
		{"sqrt(16)", 4},
		{"abs(-3.5)", 3.5},
		{"floor(2.9)", 2},
		{"ceil(2.1)", 3},
		{"round(2.5)", 3},
		{"pow(2, 8)", 256},
		{"min(3, 1, 2)", 1},
		{"max(3, 1, 2)", 3},
		{"log10(1000)", 3},
		{"log2(8)", 3},
		{"pi", math.Pi},
		{"2 * pi", 2 * math.Pi},
		{"e", math.E},
		{"cos(0)", 1},
		{"sqrt(abs(-16)) + 1", 5},
		{"  1 +  2  ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEval_Sin(t *testing.T) {
	got, err := Eval("sin(pi / 2)")
	require.NoError(t, err)
	assert.InDelta(t, 1, got, 1e-9)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"unknown name", "x + 1"},
		{"unknown function", "evil(1)"},
		{"call syntax on constant", "pi(1)"},
		{"trailing garbage", "1 + 2 )"},
		{"unclosed paren", "(1 + 2"},
		{"dangling operator", "1 +"},
		{"double dot", "1..5"},
		{"division by zero", "1 / 0"},
		{"modulo by zero", "1 % 0"},
		{"wrong arity", "pow(2)"},
		{"sqrt of negative", "sqrt(-1)"},
		{"letters", "import os"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestEval_DeepNestingRejected(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"nested parens", strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000)},
		{"unbalanced parens", strings.Repeat("(", 100000) + "1"},
		{"chained unary minus", strings.Repeat("-", 100000) + "1"},
		{"nested calls", strings.Repeat("abs(", 10000) + "1" + strings.Repeat(")", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "nested too deeply")
		})
	}
}

func TestEval_ModerateNestingAccepted(t *testing.T) {
	got, err := Eval(strings.Repeat("(", 50) + "1 + 1" + strings.Repeat(")", 50))
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)
}

func TestHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(`{"expression":"2+2"}`))
	rec := httptest.NewRecorder()
	Handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":4}`, rec.Body.String())
}

func TestHandler_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing expression", `{}`},
		{"invalid expression", `{"expression":"1 +"}`},
		{"unknown name", `{"expression":"__builtins__"}`},
		{"hostile nesting", `{"expression":"` + strings.Repeat("(", 50000) + `1"}`},
		{"oversized body", `{"expression":"` + strings.Repeat("1+", maxBodyBytes) + `1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			Handler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
