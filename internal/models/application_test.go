package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayStatus(t *testing.T) {
	chain := []StatusHistory{
		{ToStatus: StatusApplied},
		{FromStatus: StatusApplied.Ptr(), ToStatus: StatusInterview},
		{FromStatus: StatusInterview.Ptr(), ToStatus: StatusScreening},
		{FromStatus: StatusScreening.Ptr(), ToStatus: StatusRejected},
	}

	status, err := ReplayStatus(chain)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, status)
}

func TestReplayStatusRejectsBrokenChains(t *testing.T) {
	cases := map[string][]StatusHistory{
		"empty":              nil,
		"no creation event":  {{FromStatus: StatusApplied.Ptr(), ToStatus: StatusScreening}},
		"gap between events": {{ToStatus: StatusApplied}, {FromStatus: StatusInterview.Ptr(), ToStatus: StatusOffer}},
		"second creation":    {{ToStatus: StatusApplied}, {ToStatus: StatusApplied}},
	}

	for name, chain := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReplayStatus(chain)
			assert.ErrorIs(t, err, ErrBrokenChain)
		})
	}
}

func TestStatusAndRoleValidity(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ApplicationStatus("HIRED").Valid())
	assert.False(t, ApplicationStatus("").Valid())

	assert.True(t, RoleHR.IsReviewer())
	assert.True(t, RoleLead.IsReviewer())
	assert.False(t, RoleCandidate.IsReviewer())
	assert.False(t, Role("ADMIN").Valid())
}

func TestJSONBScanAcceptsStringAndBytes(t *testing.T) {
	var fromBytes, fromString JSONB
	require.NoError(t, fromBytes.Scan([]byte(`{"source":"jsearch"}`)))
	require.NoError(t, fromString.Scan(`{"source":"jsearch"}`))
	assert.Equal(t, fromBytes, fromString)

	var empty JSONB
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
