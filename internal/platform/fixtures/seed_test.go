package fixtures_test

import (
	"strings"
	"testing"

	"github.com/phrazzld/lifeline-api/internal/platform/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	seed, err := fixtures.LoadFile("testdata/seed.yaml")
	require.NoError(t, err)

	assert.Len(t, seed.Facilities, 4)
	assert.Len(t, seed.Donors, 3)
	assert.Len(t, seed.Inventory, 5)
	assert.Len(t, seed.Requests, 3)
	assert.Len(t, seed.History, 2)

	bank := seed.Facilities[0]
	assert.Equal(t, "Central Blood Bank", bank.Name)
	require.NotNil(t, bank.Location)
	assert.Equal(t, "19.076", bank.Location.Lat.String())
	assert.Equal(t, "72.8777", bank.Location.Lon.String())

	require.NotNil(t, seed.Donors[0].LastDonatedDaysAgo)
	assert.Equal(t, 80, *seed.Donors[0].LastDonatedDaysAgo)
	assert.Nil(t, seed.Donors[2].LastDonatedDaysAgo)
}

func TestLoadEmptyDocument(t *testing.T) {
	seed, err := fixtures.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Facilities)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc: `
facilities:
  - key: a
    name: A
    kind: HOSPITAL
    email: a@example.com
    city: Pune
    beds: 10
`,
			want: "decode seed",
		},
		{
			name: "unknown facility kind",
			doc: `
facilities:
  - key: a
    name: A
    kind: CLINIC
    email: a@example.com
    city: Pune
`,
			want: "invalid seed",
		},
		{
			name: "duplicate facility key",
			doc: `
facilities:
  - {key: a, name: A, kind: HOSPITAL, email: a@example.com, city: Pune}
  - {key: a, name: B, kind: HOSPITAL, email: b@example.com, city: Pune}
`,
			want: `duplicate facility key "a"`,
		},
		{
			name: "inventory owner missing",
			doc: `
inventory:
  - {key: u1, owner: ghost, blood_group: O+, component_type: RBC, quantity: 1}
`,
			want: `unknown facility "ghost"`,
		},
		{
			name: "request from a blood bank",
			doc: `
facilities:
  - {key: bank, name: Bank, kind: BLOOD_BANK, email: bank@example.com, city: Pune}
requests:
  - key: r1
    hospital: bank
    blood_group: O+
    component_type: RBC
    quantity_required: 1
    urgency: LOW
`,
			want: `unknown hospital "bank"`,
		},
		{
			name: "non-positive history window",
			doc: `
facilities:
  - {key: h, name: H, kind: HOSPITAL, email: h@example.com, city: Pune}
history:
  - {hospital: h, blood_group: O+, component_type: RBC, days: 0, quantity: 1}
`,
			want: "invalid seed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixtures.Load(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := fixtures.LoadFile("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read seed")
}
