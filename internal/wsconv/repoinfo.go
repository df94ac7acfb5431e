// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"github.com/gocmis/gocmis/pkg/cmis"
)

type wireRepositoryInfo struct {
	ID                   string                  `xml:"repositoryId"`
	Name                 string                  `xml:"repositoryName"`
	Description          string                  `xml:"repositoryDescription"`
	VendorName           string                  `xml:"vendorName"`
	ProductName          string                  `xml:"productName"`
	ProductVersion       string                  `xml:"productVersion"`
	RootFolderID         string                  `xml:"rootFolderId"`
	LatestChangeLogToken string                  `xml:"latestChangeLogToken,omitempty"`
	Capabilities         *wireCapabilities       `xml:"capabilities"`
	AclCapability        *wireAclCapabilities    `xml:"aclCapability"`
	CmisVersionSupported string                  `xml:"cmisVersionSupported"`
	ThinClientURI        string                  `xml:"thinClientURI,omitempty"`
	ChangesIncomplete    *bool                   `xml:"changesIncomplete"`
	ChangesOnType        []string                `xml:"changesOnType"`
	PrincipalAnonymous   string                  `xml:"principalAnonymous,omitempty"`
	PrincipalAnyone      string                  `xml:"principalAnyone,omitempty"`
	ExtendedFeatures     []*wireExtensionFeature `xml:"extendedFeatures"`
	Any                  []anyElement            `xml:",any"`
}

type wireCapabilities struct {
	Acl                       string                         `xml:"capabilityACL,omitempty"`
	AllVersionsSearchable     bool                           `xml:"capabilityAllVersionsSearchable"`
	Changes                   string                         `xml:"capabilityChanges,omitempty"`
	ContentStreamUpdates      string                         `xml:"capabilityContentStreamUpdatability,omitempty"`
	GetDescendants            bool                           `xml:"capabilityGetDescendants"`
	GetFolderTree             bool                           `xml:"capabilityGetFolderTree"`
	OrderBy                   *string                        `xml:"capabilityOrderBy"`
	MultiFiling               bool                           `xml:"capabilityMultifiling"`
	PWCSearchable             bool                           `xml:"capabilityPWCSearchable"`
	PWCUpdatable              bool                           `xml:"capabilityPWCUpdatable"`
	Query                     string                         `xml:"capabilityQuery,omitempty"`
	Renditions                string                         `xml:"capabilityRenditions,omitempty"`
	Unfiling                  bool                           `xml:"capabilityUnfiling"`
	VersionSpecificFiling     bool                           `xml:"capabilityVersionSpecificFiling"`
	Join                      string                         `xml:"capabilityJoin,omitempty"`
	CreatablePropertyTypes    *wireCreatablePropertyTypes    `xml:"capabilityCreatablePropertyTypes"`
	NewTypeSettableAttributes *wireNewTypeSettableAttributes `xml:"capabilityNewTypeSettableAttributes"`
	Any                       []anyElement                   `xml:",any"`
}

type wireCreatablePropertyTypes struct {
	CanCreate []string     `xml:"canCreate"`
	Any       []anyElement `xml:",any"`
}

type wireNewTypeSettableAttributes struct {
	ID                       bool         `xml:"id"`
	LocalName                bool         `xml:"localName"`
	LocalNamespace           bool         `xml:"localNamespace"`
	DisplayName              bool         `xml:"displayName"`
	QueryName                bool         `xml:"queryName"`
	Description              bool         `xml:"description"`
	Creatable                bool         `xml:"creatable"`
	Fileable                 bool         `xml:"fileable"`
	Queryable                bool         `xml:"queryable"`
	FulltextIndexed          bool         `xml:"fulltextIndexed"`
	IncludedInSupertypeQuery bool         `xml:"includedInSupertypeQuery"`
	ControllablePolicy       bool         `xml:"controllablePolicy"`
	ControllableACL          bool         `xml:"controllableACL"`
	Any                      []anyElement `xml:",any"`
}

type wireAclCapabilities struct {
	SupportedPermissions string                      `xml:"supportedPermissions,omitempty"`
	Propagation          string                      `xml:"propagation,omitempty"`
	Permissions          []*wirePermissionDefinition `xml:"permissions"`
	Mapping              []*wirePermissionMapping    `xml:"mapping"`
	Any                  []anyElement                `xml:",any"`
}

type wirePermissionDefinition struct {
	Permission  string       `xml:"permission"`
	Description string       `xml:"description,omitempty"`
	Any         []anyElement `xml:",any"`
}

type wirePermissionMapping struct {
	Key         string       `xml:"key"`
	Permissions []string     `xml:"permission"`
	Any         []anyElement `xml:",any"`
}

type wireExtensionFeature struct {
	ID           string             `xml:"id"`
	URL          string             `xml:"url,omitempty"`
	CommonName   string             `xml:"commonName,omitempty"`
	VersionLabel string             `xml:"versionLabel,omitempty"`
	Description  string             `xml:"description,omitempty"`
	FeatureData  []*wireFeatureData `xml:"featureData"`
	Any          []anyElement       `xml:",any"`
}

type wireFeatureData struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

// repositoryInfo builds the wire form of ri. Capabilities and features
// introduced in CMIS 1.1 are left out of 1.0 documents.
func (e encoder) repositoryInfo(ri *cmis.RepositoryInfo) (*wireRepositoryInfo, error) {
	out := &wireRepositoryInfo{
		ID:                   ri.ID,
		Name:                 ri.Name,
		Description:          ri.Description,
		VendorName:           ri.VendorName,
		ProductName:          ri.ProductName,
		ProductVersion:       ri.ProductVersion,
		RootFolderID:         ri.RootFolderID,
		LatestChangeLogToken: ri.LatestChangeLogToken,
		CmisVersionSupported: ri.CmisVersionSupported,
		ThinClientURI:        ri.ThinClientURI,
		ChangesIncomplete:    ri.ChangesIncomplete,
		PrincipalAnonymous:   ri.PrincipalAnonymous,
		PrincipalAnyone:      ri.PrincipalAnyone,
		Any:                  anyElements(ri.Extensions()),
	}
	for _, bt := range ri.ChangesOnType {
		if !bt.LegalIn(e.v) {
			return nil, e.violation("changesOnType " + string(bt))
		}
		out.ChangesOnType = append(out.ChangesOnType, string(bt))
	}
	if ri.Capabilities != nil {
		out.Capabilities = e.capabilities(ri.Capabilities)
	}
	if c := ri.AclCapabilities; c != nil {
		wc := &wireAclCapabilities{
			SupportedPermissions: string(c.SupportedPermissions),
			Propagation:          string(c.Propagation),
			Any:                  anyElements(c.Extensions()),
		}
		for _, p := range c.Permissions {
			wc.Permissions = append(wc.Permissions, &wirePermissionDefinition{
				Permission:  p.ID,
				Description: p.Description,
				Any:         anyElements(p.Extensions()),
			})
		}
		for _, m := range c.PermissionMapping {
			wc.Mapping = append(wc.Mapping, &wirePermissionMapping{
				Key:         m.Key,
				Permissions: m.Permissions,
				Any:         anyElements(m.Extensions()),
			})
		}
		out.AclCapability = wc
	}
	if e.v.Is11() {
		for _, f := range ri.ExtensionFeatures {
			wf := &wireExtensionFeature{
				ID:           f.ID,
				URL:          f.URL,
				CommonName:   f.CommonName,
				VersionLabel: f.VersionLabel,
				Description:  f.Description,
				Any:          anyElements(f.Extensions()),
			}
			for _, fd := range f.FeatureData {
				wf.FeatureData = append(wf.FeatureData, &wireFeatureData{Key: fd.Key, Value: fd.Value})
			}
			out.ExtendedFeatures = append(out.ExtendedFeatures, wf)
		}
	}
	return out, nil
}

func (e encoder) capabilities(c *cmis.RepositoryCapabilities) *wireCapabilities {
	out := &wireCapabilities{
		Acl:                   string(c.Acl),
		AllVersionsSearchable: c.AllVersionsSearchable,
		Changes:               string(c.Changes),
		ContentStreamUpdates:  string(c.ContentStreamUpdates),
		GetDescendants:        c.GetDescendants,
		GetFolderTree:         c.GetFolderTree,
		MultiFiling:           c.MultiFiling,
		PWCSearchable:         c.PWCSearchable,
		PWCUpdatable:          c.PWCUpdatable,
		Query:                 string(c.Query),
		Renditions:            string(c.Renditions),
		Unfiling:              c.Unfiling,
		VersionSpecificFiling: c.VersionSpecificFiling,
		Join:                  string(c.Join),
		Any:                   anyElements(c.Extensions()),
	}
	if !e.v.Is11() {
		return out
	}
	if c.OrderBy != "" {
		orderBy := string(c.OrderBy)
		out.OrderBy = &orderBy
	}
	if cpt := c.CreatablePropertyTypes; cpt != nil {
		wc := &wireCreatablePropertyTypes{Any: anyElements(cpt.Extensions())}
		for _, t := range cpt.CanCreate {
			wc.CanCreate = append(wc.CanCreate, string(t))
		}
		out.CreatablePropertyTypes = wc
	}
	if a := c.NewTypeSettableAttributes; a != nil {
		out.NewTypeSettableAttributes = &wireNewTypeSettableAttributes{
			ID:                       a.ID,
			LocalName:                a.LocalName,
			LocalNamespace:           a.LocalNamespace,
			DisplayName:              a.DisplayName,
			QueryName:                a.QueryName,
			Description:              a.Description,
			Creatable:                a.Creatable,
			Fileable:                 a.Fileable,
			Queryable:                a.Queryable,
			FulltextIndexed:          a.FulltextIndexed,
			IncludedInSupertypeQuery: a.IncludedInSupertypeQuery,
			ControllablePolicy:       a.ControllablePolicy,
			ControllableACL:          a.ControllableACL,
			Any:                      anyElements(a.Extensions()),
		}
	}
	return out
}

// repositoryInfo converts a bound repository descriptor. Under CMIS 1.0
// the elements introduced in 1.1 are kept as extensions.
func (d decoder) repositoryInfo(w *wireRepositoryInfo) (*cmis.RepositoryInfo, error) {
	ri := &cmis.RepositoryInfo{
		ID:                   w.ID,
		Name:                 w.Name,
		Description:          w.Description,
		VendorName:           w.VendorName,
		ProductName:          w.ProductName,
		ProductVersion:       w.ProductVersion,
		RootFolderID:         w.RootFolderID,
		LatestChangeLogToken: w.LatestChangeLogToken,
		CmisVersionSupported: w.CmisVersionSupported,
		ThinClientURI:        w.ThinClientURI,
		ChangesIncomplete:    w.ChangesIncomplete,
		PrincipalAnonymous:   w.PrincipalAnonymous,
		PrincipalAnyone:      w.PrincipalAnyone,
	}
	for i, s := range w.ChangesOnType {
		bt, err := parseEnum(d.at("changesOnType", i+1), "", "base type", s, cmis.BaseTypeID.Valid)
		if err != nil {
			return nil, err
		}
		ri.ChangesOnType = append(ri.ChangesOnType, bt)
	}
	var err error
	if w.Capabilities != nil {
		if ri.Capabilities, err = d.at("capabilities", 0).capabilities(w.Capabilities); err != nil {
			return nil, err
		}
	}
	if w.AclCapability != nil {
		if ri.AclCapabilities, err = d.at("aclCapability", 0).aclCapabilities(w.AclCapability); err != nil {
			return nil, err
		}
	}
	ext := extensions(w.Any)
	for i, wf := range w.ExtendedFeatures {
		if !d.v.Is11() {
			x, err := d.at("extendedFeatures", i+1).demote("extendedFeatures", wf)
			if err != nil {
				return nil, err
			}
			ext = append(ext, x)
			continue
		}
		f := &cmis.ExtensionFeature{
			ID:           wf.ID,
			URL:          wf.URL,
			CommonName:   wf.CommonName,
			VersionLabel: wf.VersionLabel,
			Description:  wf.Description,
		}
		for _, fd := range wf.FeatureData {
			f.FeatureData = append(f.FeatureData, cmis.FeatureData{Key: fd.Key, Value: fd.Value})
		}
		f.SetExtensions(extensions(wf.Any))
		ri.ExtensionFeatures = append(ri.ExtensionFeatures, f)
	}
	ri.SetExtensions(ext)
	return ri, nil
}

func (d decoder) capabilities(w *wireCapabilities) (*cmis.RepositoryCapabilities, error) {
	c := &cmis.RepositoryCapabilities{
		AllVersionsSearchable: w.AllVersionsSearchable,
		GetDescendants:        w.GetDescendants,
		GetFolderTree:         w.GetFolderTree,
		MultiFiling:           w.MultiFiling,
		PWCSearchable:         w.PWCSearchable,
		PWCUpdatable:          w.PWCUpdatable,
		Unfiling:              w.Unfiling,
		VersionSpecificFiling: w.VersionSpecificFiling,
	}
	var err error
	if c.Acl, err = parseEnum(d, "capabilityACL", "capabilityACL", w.Acl, cmis.CapabilityAcl.Valid); err != nil {
		return nil, err
	}
	if c.Changes, err = parseEnum(d, "capabilityChanges", "capabilityChanges", w.Changes, cmis.CapabilityChanges.Valid); err != nil {
		return nil, err
	}
	if c.ContentStreamUpdates, err = parseEnum(d, "capabilityContentStreamUpdatability", "capabilityContentStreamUpdatability",
		w.ContentStreamUpdates, cmis.CapabilityContentStreamUpdates.Valid); err != nil {
		return nil, err
	}
	if c.Query, err = parseEnum(d, "capabilityQuery", "capabilityQuery", w.Query, cmis.CapabilityQuery.Valid); err != nil {
		return nil, err
	}
	if c.Renditions, err = parseEnum(d, "capabilityRenditions", "capabilityRenditions", w.Renditions, cmis.CapabilityRenditions.Valid); err != nil {
		return nil, err
	}
	if c.Join, err = parseEnum(d, "capabilityJoin", "capabilityJoin", w.Join, cmis.CapabilityJoin.Valid); err != nil {
		return nil, err
	}

	ext := extensions(w.Any)
	if !d.v.Is11() {
		for _, newer := range []struct {
			local string
			value any
			ok    bool
		}{
			{"capabilityOrderBy", w.OrderBy, w.OrderBy != nil},
			{"capabilityCreatablePropertyTypes", w.CreatablePropertyTypes, w.CreatablePropertyTypes != nil},
			{"capabilityNewTypeSettableAttributes", w.NewTypeSettableAttributes, w.NewTypeSettableAttributes != nil},
		} {
			if !newer.ok {
				continue
			}
			x, err := d.demote(newer.local, newer.value)
			if err != nil {
				return nil, err
			}
			ext = append(ext, x)
		}
		c.SetExtensions(ext)
		return c, nil
	}

	if w.OrderBy != nil {
		if c.OrderBy, err = parseEnum(d, "capabilityOrderBy", "capabilityOrderBy", *w.OrderBy, cmis.CapabilityOrderBy.Valid); err != nil {
			return nil, err
		}
	}
	if wc := w.CreatablePropertyTypes; wc != nil {
		at := d.at("capabilityCreatablePropertyTypes", 0)
		cpt := &cmis.CreatablePropertyTypes{}
		for i, s := range wc.CanCreate {
			t, err := parseEnum(at.at("canCreate", i+1), "", "property type", s, cmis.PropertyType.Valid)
			if err != nil {
				return nil, err
			}
			cpt.CanCreate = append(cpt.CanCreate, t)
		}
		cpt.SetExtensions(extensions(wc.Any))
		c.CreatablePropertyTypes = cpt
	}
	if wa := w.NewTypeSettableAttributes; wa != nil {
		a := &cmis.NewTypeSettableAttributes{
			ID:                       wa.ID,
			LocalName:                wa.LocalName,
			LocalNamespace:           wa.LocalNamespace,
			DisplayName:              wa.DisplayName,
			QueryName:                wa.QueryName,
			Description:              wa.Description,
			Creatable:                wa.Creatable,
			Fileable:                 wa.Fileable,
			Queryable:                wa.Queryable,
			FulltextIndexed:          wa.FulltextIndexed,
			IncludedInSupertypeQuery: wa.IncludedInSupertypeQuery,
			ControllablePolicy:       wa.ControllablePolicy,
			ControllableACL:          wa.ControllableACL,
		}
		a.SetExtensions(extensions(wa.Any))
		c.NewTypeSettableAttributes = a
	}
	c.SetExtensions(ext)
	return c, nil
}

func (d decoder) aclCapabilities(w *wireAclCapabilities) (*cmis.AclCapabilities, error) {
	c := &cmis.AclCapabilities{}
	var err error
	if c.SupportedPermissions, err = parseEnum(d, "supportedPermissions", "supportedPermissions",
		w.SupportedPermissions, cmis.SupportedPermissions.Valid); err != nil {
		return nil, err
	}
	if c.Propagation, err = parseEnum(d, "propagation", "propagation", w.Propagation, cmis.AclPropagation.Valid); err != nil {
		return nil, err
	}
	for _, wp := range w.Permissions {
		p := &cmis.PermissionDefinition{ID: wp.Permission, Description: wp.Description}
		p.SetExtensions(extensions(wp.Any))
		c.Permissions = append(c.Permissions, p)
	}
	for _, wm := range w.Mapping {
		m := &cmis.PermissionMapping{Key: wm.Key, Permissions: wm.Permissions}
		m.SetExtensions(extensions(wm.Any))
		c.PermissionMapping = append(c.PermissionMapping, m)
	}
	c.SetExtensions(extensions(w.Any))
	return c, nil
}
