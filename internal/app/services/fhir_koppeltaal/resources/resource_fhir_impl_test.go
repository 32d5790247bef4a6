package resources

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/core/bundles"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/requests"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(server *koppeltaaltest.Server) *ResourceFhirClient {
	opts := server.Options()
	return NewResourceFhirClient(server.URL, nil, models.BasicCredential(opts.Username, opts.Password), zap.NewNop())
}

func activityDefinition(t *testing.T, server *koppeltaaltest.Server, id, name string) *fhir_dto.Resource {
	t.Helper()
	b, err := bundles.NewResourceBuilder(bundles.Config{
		BaseURL:       server.BaseURL(),
		Namespace:     server.Namespace(),
		ApplicationID: "game-app",
		Domain:        koppeltaaltest.DefaultDomain,
	})
	require.NoError(t, err)
	require.NoError(t, b.AddActivityDefinition(requests.ActivityDefinitionParams{
		ResourceParams: requests.ResourceParams{ID: id},
		Identifier:     id,
		Name:           name,
		Kind:           models.ActivityKindQuestionnaire,
		IsActive:       true,
		SubActivities: []requests.SubActivityDefinitionParams{
			{Identifier: id + "-1", Name: "Part one", IsActive: true},
		},
	}))
	res, err := b.BuildResource()
	require.NoError(t, err)
	return res
}

func TestResourceFhirClient_Metadata(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()

	md, err := newTestClient(server).GetMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, server.URL+constvars.KoppeltaalAuthorizePath, md.AuthorizeEndpoint)
	assert.Equal(t, server.URL+constvars.KoppeltaalTokenPath, md.TokenEndpoint)
	assert.NotEmpty(t, md.Raw)
}

func TestResourceFhirClient_ActivityDefinitions(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	client := newTestClient(server)
	ctx := context.Background()

	created, err := client.PostResource(ctx, activityDefinition(t, server, "ad-1", "Mood diary"), "")
	require.NoError(t, err)
	assert.Equal(t, "1", created.VersionID())

	_, err = client.PostResource(ctx, activityDefinition(t, server, "ad-2", "Breathing"), "")
	require.NoError(t, err)

	t.Run("Lists All Definitions", func(t *testing.T) {
		definitions, err := client.GetActivityDefinitions(ctx)
		require.NoError(t, err)
		assert.Len(t, definitions, 2)

		raw, err := client.GetActivityDefinitionsRaw(ctx)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Mood diary")
	})

	t.Run("Finds One By Id", func(t *testing.T) {
		definition, err := client.GetActivityDefinitionByID(ctx, "ad-2")
		require.NoError(t, err)
		name, ok := extensions.ActivityDefinitionName.Get(server.Namespace(), definition)
		require.True(t, ok)
		assert.Equal(t, "Breathing", name)
		assert.Len(t, extensions.ActivityDefinitionSubActivity.Items(server.Namespace(), definition), 1)
	})

	t.Run("Unknown Id", func(t *testing.T) {
		_, err := client.GetActivityDefinitionByID(ctx, "ad-404")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}

func TestResourceFhirClient_ConditionalUpdate(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	client := newTestClient(server)
	ctx := context.Background()

	res := activityDefinition(t, server, "ad-1", "Mood diary")
	_, err := client.PostResource(ctx, res, "")
	require.NoError(t, err)

	t.Run("Creating Twice Conflicts", func(t *testing.T) {
		_, err := client.PostResource(ctx, res, "")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindVersionConflict))
	})

	extensions.ActivityDefinitionName.Set(server.Namespace(), res, "Mood diary v2")
	updated, err := client.PostResource(ctx, res, "1")
	require.NoError(t, err)
	assert.Equal(t, "2", updated.VersionID())

	t.Run("Stale Version Conflicts", func(t *testing.T) {
		_, err := client.PostResource(ctx, res, "1")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindVersionConflict))
	})

	t.Run("History Stays Readable", func(t *testing.T) {
		first, err := client.Read(ctx, server.BaseURL()+"/Other/ad-1/_history/1")
		require.NoError(t, err)
		name, _ := extensions.ActivityDefinitionName.Get(server.Namespace(), first)
		assert.Equal(t, "Mood diary", name)

		latest, err := client.Read(ctx, "Other/ad-1")
		require.NoError(t, err)
		name, _ = extensions.ActivityDefinitionName.Get(server.Namespace(), latest)
		assert.Equal(t, "Mood diary v2", name)
	})

	t.Run("Unknown Resource", func(t *testing.T) {
		_, err := client.Read(ctx, "Patient/nobody")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}
