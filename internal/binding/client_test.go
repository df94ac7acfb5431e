// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// mockPort is a mock for binding.Port.
type mockPort struct {
	mock.Mock
}

func (m *mockPort) Call(ctx context.Context, req *binding.Request) (*binding.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*binding.Response), args.Error(1)
}

func objectWithID(id string) *cmis.ObjectData {
	return &cmis.ObjectData{Properties: cmis.NewProperties(cmis.NewIDProperty(cmis.PropObjectID, id))}
}

func TestClient_GetObject(t *testing.T) {
	ctx := context.Background()
	port := new(mockPort)
	port.On("Call", ctx, mock.MatchedBy(func(req *binding.Request) bool {
		return req.RepositoryID == "repo" && req.Object &&
			req.Selector == binding.SelectorObject &&
			req.Params.Get(binding.ParamObjectID) == "doc-1" &&
			req.Params.Get(binding.ParamIncludeACL) == "true" &&
			req.Params.Get(binding.ParamIncludeRelationships) == "both" &&
			req.Result == codec.KindObject
	})).Return(&binding.Response{Value: objectWithID("doc-1")}, nil)

	c := binding.NewClient(port)
	od, err := c.GetObject(ctx, "repo", "doc-1", binding.ObjectOptions{
		IncludeACL:           true,
		IncludeRelationships: cmis.IncludeRelationshipsBoth,
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", od.ID())
	port.AssertExpectations(t)
}

func TestClient_CreateDocumentSendsPropertiesAndContent(t *testing.T) {
	ctx := context.Background()
	props := cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "a.txt"))
	content := &cmis.ContentStream{MimeType: "text/plain", Stream: io.NopCloser(strings.NewReader("hi"))}

	port := new(mockPort)
	port.On("Call", ctx, mock.MatchedBy(func(req *binding.Request) bool {
		return req.Action == binding.ActionCreateDocument &&
			req.Params.Get(binding.ParamFolderID) == "root-id" &&
			req.Params.Get(binding.ParamVersioningState) == "major" &&
			len(req.Parts) == 1 && req.Parts[0].Name == binding.PartProperties &&
			req.Parts[0].Value == props && req.Content == content
	})).Return(&binding.Response{Value: objectWithID("new-doc")}, nil)

	c := binding.NewClient(port)
	id, err := c.CreateDocument(ctx, "repo", props, "root-id", content, cmis.VersioningStateMajor)
	require.NoError(t, err)
	assert.Equal(t, "new-doc", id)
	port.AssertExpectations(t)
}

func TestClient_ApplyAclNamesBothLists(t *testing.T) {
	ctx := context.Background()
	add := &cmis.Acl{Aces: []*cmis.Ace{cmis.NewAce("alice", "cmis:read")}}

	port := new(mockPort)
	port.On("Call", ctx, mock.MatchedBy(func(req *binding.Request) bool {
		return req.Action == binding.ActionApplyACL && len(req.Parts) == 2 &&
			req.Parts[0].Name == binding.PartAddACEs && req.Parts[0].Value == add &&
			req.Parts[1].Name == binding.PartRemoveACEs
	})).Return(&binding.Response{Value: add}, nil)

	c := binding.NewClient(port)
	got, err := c.ApplyAcl(ctx, "repo", "doc-1", add, nil, cmis.AclPropagationObjectOnly)
	require.NoError(t, err)
	assert.Same(t, add, got)
	port.AssertExpectations(t)
}

func TestClient_PassesServiceErrorsThrough(t *testing.T) {
	ctx := context.Background()
	port := new(mockPort)
	port.On("Call", ctx, mock.Anything).
		Return(nil, binding.FaultToError("objectNotFound", "gone", 0))

	c := binding.NewClient(port)
	_, err := c.GetProperties(ctx, "repo", "missing", "")

	var nf *cmis.ObjectNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestClient_WrongResultType(t *testing.T) {
	ctx := context.Background()
	port := new(mockPort)
	port.On("Call", ctx, mock.Anything).Return(&binding.Response{Value: &cmis.Acl{}}, nil)

	c := binding.NewClient(port)
	_, err := c.GetRepositoryInfo(ctx, "repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*cmis.RepositoryInfo")
}

func TestClient_GetRenditionsUnwrapsObject(t *testing.T) {
	ctx := context.Background()
	rd := &cmis.Rendition{StreamID: "thumb", MimeType: "image/png", Kind: "cmis:thumbnail"}
	port := new(mockPort)
	port.On("Call", ctx, mock.MatchedBy(func(req *binding.Request) bool {
		return req.Selector == binding.SelectorRenditions && req.Params.Get(binding.ParamRenditionFilter) == "image/*"
	})).Return(&binding.Response{Value: &cmis.ObjectData{Renditions: []*cmis.Rendition{rd}}}, nil)

	c := binding.NewClient(port)
	got, err := c.GetRenditions(ctx, "repo", "doc-1", "image/*", binding.Paging{})
	require.NoError(t, err)
	assert.Equal(t, []*cmis.Rendition{rd}, got)
}

func TestPortFunc(t *testing.T) {
	var seen *binding.Request
	port := binding.PortFunc(func(_ context.Context, req *binding.Request) (*binding.Response, error) {
		seen = req
		return &binding.Response{}, nil
	})
	c := binding.NewClient(port)
	require.NoError(t, c.DeleteObject(context.Background(), "repo", "doc-1", true))
	require.NotNil(t, seen)
	assert.Equal(t, binding.ActionDelete, seen.Action)
	assert.Equal(t, "true", seen.Params.Get(binding.ParamAllVersions))
}
