// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Path prefix of every endpoint URL. A repository URL is
// BasePath/{repositoryId}; the object URL of the repository adds /root.
const (
	BasePath   = "/browser"
	ObjectPath = "root"
)

// Selectors of read requests (GET, parameter cmisselector).
const (
	SelectorRepositoryInfo   = "repositoryInfo"
	SelectorTypeChildren     = "typeChildren"
	SelectorTypeDescendants  = "typeDescendants"
	SelectorTypeDefinition   = "typeDefinition"
	SelectorContentChanges   = "contentChanges"
	SelectorObject           = "object"
	SelectorProperties       = "properties"
	SelectorAllowableActions = "allowableActions"
	SelectorRenditions       = "renditions"
	SelectorContent          = "content"
	SelectorChildren         = "children"
	SelectorDescendants      = "descendants"
	SelectorParents          = "parents"
	SelectorACL              = "acl"
	SelectorPolicies         = "policies"
	SelectorRelationships    = "relationships"
	SelectorVersions         = "versions"
)

// Actions of write requests (POST, parameter cmisaction).
const (
	ActionCreateDocument         = "createDocument"
	ActionCreateFolder           = "createFolder"
	ActionCreateRelationship     = "createRelationship"
	ActionCreatePolicy           = "createPolicy"
	ActionUpdate                 = "update"
	ActionDelete                 = "delete"
	ActionSetContent             = "setContent"
	ActionDeleteContent          = "deleteContent"
	ActionMove                   = "move"
	ActionBulkUpdate             = "bulkUpdate"
	ActionQuery                  = "query"
	ActionApplyACL               = "applyACL"
	ActionApplyPolicy            = "applyPolicy"
	ActionRemovePolicy           = "removePolicy"
	ActionCheckOut               = "checkOut"
	ActionCancelCheckOut         = "cancelCheckOut"
	ActionCheckIn                = "checkIn"
	ActionAddObjectToFolder      = "addObjectToFolder"
	ActionRemoveObjectFromFolder = "removeObjectFromFolder"
)

// Request parameters.
const (
	ParamSelector                    = "cmisselector"
	ParamAction                      = "cmisaction"
	ParamFormat                      = "format"
	ParamVersion                     = "cmisVersion"
	ParamObjectID                    = "objectId"
	ParamTypeID                      = "typeId"
	ParamFolderID                    = "folderId"
	ParamPath                        = "path"
	ParamFilter                      = "filter"
	ParamIncludeAllowableActions     = "includeAllowableActions"
	ParamIncludeRelationships        = "includeRelationships"
	ParamRenditionFilter             = "renditionFilter"
	ParamIncludePolicyIDs            = "includePolicyIds"
	ParamIncludeACL                  = "includeACL"
	ParamMaxItems                    = "maxItems"
	ParamSkipCount                   = "skipCount"
	ParamDepth                       = "depth"
	ParamIncludePropertyDefinitions  = "includePropertyDefinitions"
	ParamChangeLogToken              = "changeLogToken"
	ParamIncludeProperties           = "includeProperties"
	ParamAllVersions                 = "allVersions"
	ParamOverwrite                   = "overwriteFlag"
	ParamStreamID                    = "streamId"
	ParamTargetFolderID              = "targetFolderId"
	ParamSourceFolderID              = "sourceFolderId"
	ParamVersioningState             = "versioningState"
	ParamChangeToken                 = "changeToken"
	ParamMajor                       = "major"
	ParamCheckinComment              = "checkinComment"
	ParamOnlyBasicPermissions        = "onlyBasicPermissions"
	ParamACLPropagation              = "ACLPropagation"
	ParamPolicyID                    = "policyId"
	ParamIncludeSubRelationshipTypes = "includeSubRelationshipTypes"
	ParamRelationshipDirection       = "relationshipDirection"
	ParamFilename                    = "filename"
)

// Names of the parts of a multipart request body.
const (
	PartProperties = "properties"
	PartContent    = "content"
	PartAddACEs    = "addACEs"
	PartRemoveACEs = "removeACEs"
	PartQuery      = "query"
	PartBulkUpdate = "bulkUpdate"
)

// Query reads request parameters, reporting bad values as invalid-argument
// service errors.
type Query struct {
	url.Values
}

// String returns the trimmed value of name.
func (q Query) String(name string) string {
	return strings.TrimSpace(q.Get(name))
}

// Required returns the value of name, failing when it is missing.
func (q Query) Required(name string) (string, error) {
	s := q.String(name)
	if s == "" {
		return "", invalidArgument("parameter %s is required", name)
	}
	return s, nil
}

// Bool returns the boolean value of name, or def when it is missing.
func (q Query) Bool(name string, def bool) (bool, error) {
	s := q.String(name)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, invalidArgument("parameter %s: %q is not a boolean", name, s)
	}
	return b, nil
}

// Int returns the integer value of name, or def when it is missing.
func (q Query) Int(name string, def int) (int, error) {
	s := q.String(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalidArgument("parameter %s: %q is not an integer", name, s)
	}
	return n, nil
}

// Paging reads maxItems and skipCount.
func (q Query) Paging() (Paging, error) {
	maxItems, err := q.Int(ParamMaxItems, 0)
	if err != nil {
		return Paging{}, err
	}
	skipCount, err := q.Int(ParamSkipCount, 0)
	if err != nil {
		return Paging{}, err
	}
	if skipCount < 0 {
		return Paging{}, invalidArgument("parameter %s must not be negative", ParamSkipCount)
	}
	return Paging{MaxItems: maxItems, SkipCount: skipCount}, nil
}

// ObjectOptions reads the parameters selecting optional object parts.
func (q Query) ObjectOptions() (ObjectOptions, error) {
	opts := ObjectOptions{
		Filter:               q.String(ParamFilter),
		RenditionFilter:      q.String(ParamRenditionFilter),
		IncludeRelationships: cmis.IncludeRelationshipsNone,
	}
	var err error
	if opts.IncludeAllowableActions, err = q.Bool(ParamIncludeAllowableActions, false); err != nil {
		return opts, err
	}
	if opts.IncludePolicyIDs, err = q.Bool(ParamIncludePolicyIDs, false); err != nil {
		return opts, err
	}
	if opts.IncludeACL, err = q.Bool(ParamIncludeACL, false); err != nil {
		return opts, err
	}
	if s := q.String(ParamIncludeRelationships); s != "" {
		opts.IncludeRelationships = cmis.IncludeRelationships(strings.ToLower(s))
		if !opts.IncludeRelationships.Valid() {
			return opts, invalidArgument("parameter %s: unknown value %q", ParamIncludeRelationships, s)
		}
	}
	return opts, nil
}

func setBool(q url.Values, name string, b bool) {
	if b {
		q.Set(name, "true")
	}
}

func setString(q url.Values, name, s string) {
	if s != "" {
		q.Set(name, s)
	}
}

func setInt(q url.Values, name string, n int) {
	if n != 0 {
		q.Set(name, strconv.Itoa(n))
	}
}

func (p Paging) encode(q url.Values) {
	setInt(q, ParamMaxItems, p.MaxItems)
	setInt(q, ParamSkipCount, p.SkipCount)
}

func (o ObjectOptions) encode(q url.Values) {
	setString(q, ParamFilter, o.Filter)
	setBool(q, ParamIncludeAllowableActions, o.IncludeAllowableActions)
	if o.IncludeRelationships != "" && o.IncludeRelationships != cmis.IncludeRelationshipsNone {
		q.Set(ParamIncludeRelationships, string(o.IncludeRelationships))
	}
	setString(q, ParamRenditionFilter, o.RenditionFilter)
	setBool(q, ParamIncludePolicyIDs, o.IncludePolicyIDs)
	setBool(q, ParamIncludeACL, o.IncludeACL)
}

func invalidArgument(format string, args ...any) error {
	return cmis.NewServiceError(cmis.ErrorKindInvalidArgument, fmt.Sprintf(format, args...), 0)
}
