package patcher

import "testing"

func TestParseBoolChoice(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
		ok       bool
	}{
		{name: "EmptyDefaultsTrue", input: "", expected: true, ok: true},
		{name: "TrueWord", input: "true", expected: true, ok: true},
		{name: "FalseWord", input: "false", expected: false, ok: true},
		{name: "Yes", input: "yes", expected: true, ok: true},
		{name: "No", input: "no", expected: false, ok: true},
		{name: "Upper", input: "ON", expected: true, ok: true},
		{name: "Invalid", input: "maybe", expected: false, ok: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			value, ok := parseBoolChoice(testCase.input)
			if ok != testCase.ok {
				testingT.Fatalf("expected ok=%v, got %v", testCase.ok, ok)
			}
			if ok && value != testCase.expected {
				testingT.Fatalf("expected value %v, got %v", testCase.expected, value)
			}
		})
	}
}

func TestSplitPauseArgument(t *testing.T) {
	testCases := []struct {
		name          string
		args          []string
		flagChanged   bool
		expectedArgs  int
		expectedPause *bool
	}{
		{name: "flag unchanged keeps args", args: []string{"false"}, flagChanged: false, expectedArgs: 1},
		{name: "trailing boolean consumed", args: []string{"false"}, flagChanged: true, expectedArgs: 0, expectedPause: boolPointer(false)},
		{name: "non boolean kept", args: []string{"extra"}, flagChanged: true, expectedArgs: 1},
		{name: "no args", args: nil, flagChanged: true, expectedArgs: 0},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			remaining, pause := splitPauseArgument(testCase.args, testCase.flagChanged)
			if len(remaining) != testCase.expectedArgs {
				testingT.Fatalf("expected %d args, got %v", testCase.expectedArgs, remaining)
			}
			if (pause == nil) != (testCase.expectedPause == nil) {
				testingT.Fatalf("expected pause %v, got %v", testCase.expectedPause, pause)
			}
			if pause != nil && *pause != *testCase.expectedPause {
				testingT.Fatalf("expected pause %v, got %v", *testCase.expectedPause, *pause)
			}
		})
	}
}

func TestBoolChoiceValue(t *testing.T) {
	target := false
	value := newBoolChoiceValue(&target)
	if err := value.Set("yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !target || value.String() != "true" || value.Type() != "bool" {
		t.Fatalf("unexpected state target=%v string=%s", target, value.String())
	}
	if err := value.Set("sometimes"); err == nil {
		t.Fatalf("expected error for invalid value")
	}
}

func boolPointer(value bool) *bool { return &value }
