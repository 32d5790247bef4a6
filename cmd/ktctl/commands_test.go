package main

import (
	"bytes"
	"context"
	"io"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/messages"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func run(t *testing.T, server *koppeltaaltest.Server, args ...string) (string, error) {
	t.Helper()
	opts := server.Options()
	out := new(bytes.Buffer)
	cmd := newRootCmd(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{
		"--server", server.URL,
		"--username", opts.Username,
		"--password", opts.Password,
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func postCarePlan(t *testing.T, server *koppeltaaltest.Server, messageID string) *models.MessageHeader {
	t.Helper()
	opts := server.Options()
	client := messages.NewMessageFhirClient(messages.Config{
		ServerURL: server.URL,
		Namespace: server.Namespace(),
	}, nil, models.BasicCredential(opts.Username, opts.Password), zap.NewNop())
	bundle, err := server.CarePlanBundle(messageID, "patient-"+messageID)
	require.NoError(t, err)
	resp, err := client.Post(context.Background(), bundle)
	require.NoError(t, err)
	header, ok := models.MessageHeaderByMessageID(server.Namespace(), resp, messageID)
	require.True(t, ok)
	return header
}

func TestKtctl_Version(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()

	out, err := run(t, server, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestKtctl_Metadata(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()

	t.Run("Summary Lists The OAuth Endpoints", func(t *testing.T) {
		out, err := run(t, server, "metadata")
		require.NoError(t, err)
		assert.Contains(t, out, "authorize")
		assert.Contains(t, out, server.URL)
	})

	t.Run("Raw Prints The Document", func(t *testing.T) {
		out, err := run(t, server, "metadata", "--raw")
		require.NoError(t, err)
		assert.Contains(t, out, `"resourceType"`)
	})
}

func TestKtctl_TestAuth(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()

	t.Run("Accepted Credentials", func(t *testing.T) {
		out, err := run(t, server, "test-auth")
		require.NoError(t, err)
		assert.Contains(t, out, "authenticated")
	})

	t.Run("Wrong Password Fails", func(t *testing.T) {
		_, err := run(t, server, "test-auth", "--password", "wrong")
		assert.Error(t, err)
	})
}

func TestKtctl_MessageLifecycle(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	header := postCarePlan(t, server, "msg-cli-1")

	t.Run("Headers Lists New Messages", func(t *testing.T) {
		out, err := run(t, server, "headers", "--status", "New")
		require.NoError(t, err)
		assert.Contains(t, out, "msg-cli-1")
		assert.Contains(t, out, header.ID)
	})

	t.Run("Unknown Event Is Rejected", func(t *testing.T) {
		_, err := run(t, server, "headers", "--event", "NoSuchEvent")
		assert.Error(t, err)
	})

	t.Run("Claim Next Claims The Message", func(t *testing.T) {
		out, err := run(t, server, "claim-next")
		require.NoError(t, err)
		assert.Contains(t, out, string(models.ProcessingStatusClaimed))
		assert.Equal(t, models.ProcessingStatusClaimed, server.HeaderStatus(header.ID))
	})

	t.Run("Claim Next With Empty Mailbox", func(t *testing.T) {
		out, err := run(t, server, "claim-next")
		require.NoError(t, err)
		assert.Contains(t, out, "no new messages")
	})

	t.Run("Fetch Prints The Bundle", func(t *testing.T) {
		out, err := run(t, server, "fetch", header.ID)
		require.NoError(t, err)
		assert.Contains(t, out, `"CarePlan"`)
	})

	t.Run("Transition Acknowledges The Message", func(t *testing.T) {
		out, err := run(t, server, "transition", header.ID, "Success")
		require.NoError(t, err)
		assert.Contains(t, out, string(models.ProcessingStatusSuccess))
		assert.Equal(t, models.ProcessingStatusSuccess, server.HeaderStatus(header.ID))
	})

	t.Run("Terminal Status Cannot Move", func(t *testing.T) {
		_, err := run(t, server, "transition", header.ID, "Claimed")
		assert.Error(t, err)
	})
}

func TestKtctl_TransitionFailed(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	header := postCarePlan(t, server, "msg-cli-2")
	require.True(t, server.SetHeaderStatus(header.ID, models.ProcessingStatusClaimed))

	_, err := run(t, server, "transition", header.ID, "Failed", "--reason", "unknown patient")
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusFailed, server.HeaderStatus(header.ID))

	t.Run("Unknown Status", func(t *testing.T) {
		_, err := run(t, server, "transition", header.ID, "Done")
		assert.Error(t, err)
	})
}
