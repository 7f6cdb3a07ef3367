package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadObservations(t *testing.T) {
	in := "flow,date\n1.5,2020-01-01\n,2020-01-02\n 3 , 2020-01-03\n"

	obs, err := readObservations(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), obs[0].Date)
	assert.True(t, obs[0].HasFlow)
	assert.InDelta(t, 1.5, obs[0].Flow, 1e-12)
	assert.False(t, obs[1].HasFlow)
	assert.True(t, obs[2].HasFlow)
	assert.InDelta(t, 3.0, obs[2].Flow, 1e-12)
}

func TestReadObservations_Errors(t *testing.T) {
	tests := map[string]string{
		"missing flow column": "date,value\n2020-01-01,1\n",
		"bad date":            "date,flow\n01/02/2020,1\n",
		"bad flow":            "date,flow\n2020-01-01,abc\n",
		"empty":               "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readObservations(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestOptionalDate(t *testing.T) {
	d, err := optionalDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = optionalDate("2001-10-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2001, 10, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = optionalDate("2001-13-01")
	assert.Error(t, err)
}
