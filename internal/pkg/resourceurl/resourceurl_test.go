package resourceurl

import (
	"testing"

	"koppeltaal-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://ggz.koppeltaal.nl/fhir/Koppeltaal"

func TestBuild(t *testing.T) {
	t.Run("Versioned Reference", func(t *testing.T) {
		ref, err := Build(base, "Patient", "p-1", "7")
		require.NoError(t, err)
		assert.Equal(t, base+"/Patient/p-1/_history/7", ref)
	})

	t.Run("Empty Version Means Create", func(t *testing.T) {
		ref, err := Build(base, "Patient", "p-1", "")
		require.NoError(t, err)
		assert.Equal(t, base+"/Patient/p-1", ref)
		assert.NotContains(t, ref, "_history")
	})

	t.Run("Trailing Slash On Base", func(t *testing.T) {
		ref, err := Build(base+"/", "CarePlan", "cp", "")
		require.NoError(t, err)
		assert.Equal(t, base+"/CarePlan/cp", ref)
	})

	invalid := []struct {
		name, base, resourceType, id string
	}{
		{"Relative Base", "ggz.koppeltaal.nl", "Patient", "1"},
		{"Non HTTP Scheme", "ftp://ggz.koppeltaal.nl", "Patient", "1"},
		{"Lowercase Type", base, "patient", "1"},
		{"Type With Digits", base, "Patient2", "1"},
		{"Empty ID", base, "Patient", ""},
		{"ID With Slash", base, "Patient", "a/b"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.base, tt.resourceType, tt.id, "")
			require.Error(t, err)
			assert.True(t, exceptions.IsKind(err, exceptions.KindProtocolViolation))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("Absolute Versioned", func(t *testing.T) {
		u, err := Parse(base + "/MessageHeader/abc/_history/3")
		require.NoError(t, err)
		assert.Equal(t, base, u.Base)
		assert.Equal(t, "MessageHeader", u.ResourceType)
		assert.Equal(t, "abc", u.ID)
		assert.Equal(t, "3", u.Version)
	})

	t.Run("Relative Unversioned", func(t *testing.T) {
		u, err := Parse("Practitioner/x-9")
		require.NoError(t, err)
		assert.Equal(t, "", u.Base)
		assert.Equal(t, "Practitioner", u.ResourceType)
		assert.Equal(t, "x-9", u.ID)
		assert.Equal(t, "", u.Version)
	})

	t.Run("Query Is Ignored", func(t *testing.T) {
		u, err := Parse(base + "/Patient/1?_format=json")
		require.NoError(t, err)
		assert.Equal(t, "1", u.ID)
	})

	t.Run("Bare ID Is Rejected", func(t *testing.T) {
		_, err := Parse("just-an-id")
		assert.Error(t, err)
	})

	t.Run("Empty History Is Rejected", func(t *testing.T) {
		_, err := Parse(base + "/Patient/1/_history/")
		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	for _, version := range []string{"1", "42", "2024-01-01T00:00:00Z"} {
		ref, err := Build(base, "CareTeam", "team", version)
		require.NoError(t, err)
		u, err := Parse(ref)
		require.NoError(t, err)
		assert.Equal(t, version, u.Version)
		assert.Equal(t, ref, u.String())
	}
}

func TestVersionOf(t *testing.T) {
	v, ok := VersionOf(base + "/Patient/1/_history/5")
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	_, ok = VersionOf(base + "/Patient/1")
	assert.False(t, ok)

	_, ok = VersionOf("::not a reference::")
	assert.False(t, ok)
}

func TestSameResourceIgnoresVersionAndBase(t *testing.T) {
	a, _ := Parse(base + "/Patient/1/_history/1")
	b, _ := Parse("Patient/1/_history/2")
	c, _ := Parse(base + "/Practitioner/1")

	assert.True(t, a.SameResource(b))
	assert.False(t, a.SameResource(c))
	assert.Equal(t, base+"/Patient/1", a.Unversioned().String())
	assert.Equal(t, base+"/Patient/1/_history/9", a.WithVersion("9").String())
}
