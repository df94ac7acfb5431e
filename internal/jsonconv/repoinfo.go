// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"github.com/gocmis/gocmis/pkg/cmis"
)

var (
	repoInfoKeys = newKeys("repositoryId", "repositoryName", "repositoryDescription", "vendorName",
		"productName", "productVersion", "rootFolderId", "latestChangeLogToken", "capabilities",
		"aclCapabilities", "cmisVersionSupported", "thinClientURI", "changesIncomplete", "changesOnType",
		"principalIdAnonymous", "principalIdAnyone").
		with(cmis.Version11, "extendedFeatures")
	capabilityKeys = newKeys("capabilityACL", "capabilityAllVersionsSearchable", "capabilityChanges",
		"capabilityContentStreamUpdatability", "capabilityGetDescendants", "capabilityGetFolderTree",
		"capabilityMultifiling", "capabilityPWCSearchable", "capabilityPWCUpdatable", "capabilityQuery",
		"capabilityRenditions", "capabilityUnfiling", "capabilityVersionSpecificFiling", "capabilityJoin").
		with(cmis.Version11, "capabilityOrderBy", "capabilityCreatablePropertyTypes", "capabilityNewTypeSettableAttributes")
	creatableKeys  = newKeys("canCreate")
	settableKeys   = newKeys(settableNames...)
	aclCapKeys     = newKeys("supportedPermissions", "propagation", "permissions", "permissionMapping")
	permissionKeys = newKeys("permission", "description")
	mappingKeys    = newKeys("key", "permission")
	featureKeys    = newKeys("id", "url", "commonName", "versionLabel", "description", "featureData")
)

var settableNames = []string{
	"id", "localName", "localNamespace", "displayName", "queryName", "description", "creatable",
	"fileable", "queryable", "fulltextIndexed", "includedInSupertypeQuery", "controllablePolicy",
	"controllableACL",
}

// settableFields returns the fields of a in the order of settableNames.
func settableFields(a *cmis.NewTypeSettableAttributes) []*bool {
	return []*bool{
		&a.ID, &a.LocalName, &a.LocalNamespace, &a.DisplayName, &a.QueryName, &a.Description,
		&a.Creatable, &a.Fileable, &a.Queryable, &a.FulltextIndexed, &a.IncludedInSupertypeQuery,
		&a.ControllablePolicy, &a.ControllableACL,
	}
}

// repositoryInfo writes a repository descriptor. Capabilities and features
// introduced in 1.1 are left out of 1.0 documents.
func (e encoder) repositoryInfo(ri *cmis.RepositoryInfo) (any, error) {
	for _, bt := range ri.ChangesOnType {
		if !bt.LegalIn(e.v) {
			return nil, e.violation("changesOnType " + string(bt))
		}
	}
	o := newObject()
	o.Set("repositoryId", ri.ID)
	o.Set("repositoryName", ri.Name)
	o.Set("repositoryDescription", ri.Description)
	o.Set("vendorName", ri.VendorName)
	o.Set("productName", ri.ProductName)
	o.Set("productVersion", ri.ProductVersion)
	o.Set("rootFolderId", ri.RootFolderID)
	setString(o, "latestChangeLogToken", ri.LatestChangeLogToken)
	if ri.Capabilities != nil {
		o.Set("capabilities", e.capabilities(ri.Capabilities))
	}
	if ri.AclCapabilities != nil {
		o.Set("aclCapabilities", e.aclCapabilities(ri.AclCapabilities))
	}
	o.Set("cmisVersionSupported", ri.CmisVersionSupported)
	setString(o, "thinClientURI", ri.ThinClientURI)
	setBool(o, "changesIncomplete", ri.ChangesIncomplete)
	if len(ri.ChangesOnType) > 0 {
		types := make([]string, 0, len(ri.ChangesOnType))
		for _, bt := range ri.ChangesOnType {
			types = append(types, string(bt))
		}
		o.Set("changesOnType", types)
	}
	setString(o, "principalIdAnonymous", ri.PrincipalAnonymous)
	setString(o, "principalIdAnyone", ri.PrincipalAnyone)
	if e.v.Is11() && len(ri.ExtensionFeatures) > 0 {
		features := make([]any, 0, len(ri.ExtensionFeatures))
		for _, f := range ri.ExtensionFeatures {
			features = append(features, e.extensionFeature(f))
		}
		o.Set("extendedFeatures", features)
	}
	e.extensions(o, repoInfoKeys, ri.Extensions())
	return o, nil
}

func (e encoder) capabilities(c *cmis.RepositoryCapabilities) *object {
	o := newObject()
	setString(o, "capabilityACL", string(c.Acl))
	o.Set("capabilityAllVersionsSearchable", c.AllVersionsSearchable)
	setString(o, "capabilityChanges", string(c.Changes))
	setString(o, "capabilityContentStreamUpdatability", string(c.ContentStreamUpdates))
	o.Set("capabilityGetDescendants", c.GetDescendants)
	o.Set("capabilityGetFolderTree", c.GetFolderTree)
	if e.v.Is11() {
		setString(o, "capabilityOrderBy", string(c.OrderBy))
	}
	o.Set("capabilityMultifiling", c.MultiFiling)
	o.Set("capabilityPWCSearchable", c.PWCSearchable)
	o.Set("capabilityPWCUpdatable", c.PWCUpdatable)
	setString(o, "capabilityQuery", string(c.Query))
	setString(o, "capabilityRenditions", string(c.Renditions))
	o.Set("capabilityUnfiling", c.Unfiling)
	o.Set("capabilityVersionSpecificFiling", c.VersionSpecificFiling)
	setString(o, "capabilityJoin", string(c.Join))
	if e.v.Is11() && c.CreatablePropertyTypes != nil {
		types := make([]string, 0, len(c.CreatablePropertyTypes.CanCreate))
		for _, t := range c.CreatablePropertyTypes.CanCreate {
			types = append(types, string(t))
		}
		co := newObject()
		co.Set("canCreate", types)
		e.extensions(co, creatableKeys, c.CreatablePropertyTypes.Extensions())
		o.Set("capabilityCreatablePropertyTypes", co)
	}
	if e.v.Is11() && c.NewTypeSettableAttributes != nil {
		a := c.NewTypeSettableAttributes
		ao := newObject()
		for i, f := range settableFields(a) {
			ao.Set(settableNames[i], *f)
		}
		e.extensions(ao, settableKeys, a.Extensions())
		o.Set("capabilityNewTypeSettableAttributes", ao)
	}
	e.extensions(o, capabilityKeys, c.Extensions())
	return o
}

func (e encoder) aclCapabilities(c *cmis.AclCapabilities) *object {
	o := newObject()
	setString(o, "supportedPermissions", string(c.SupportedPermissions))
	setString(o, "propagation", string(c.Propagation))
	if len(c.Permissions) > 0 {
		perms := make([]any, 0, len(c.Permissions))
		for _, p := range c.Permissions {
			po := newObject()
			po.Set("permission", p.ID)
			setString(po, "description", p.Description)
			e.extensions(po, permissionKeys, p.Extensions())
			perms = append(perms, po)
		}
		o.Set("permissions", perms)
	}
	if len(c.PermissionMapping) > 0 {
		mappings := make([]any, 0, len(c.PermissionMapping))
		for _, m := range c.PermissionMapping {
			mo := newObject()
			mo.Set("key", m.Key)
			mo.Set("permission", nonNil(m.Permissions))
			e.extensions(mo, mappingKeys, m.Extensions())
			mappings = append(mappings, mo)
		}
		o.Set("permissionMapping", mappings)
	}
	e.extensions(o, aclCapKeys, c.Extensions())
	return o
}

// extensionFeature writes one feature. Feature data is a JSON object, so
// only the last of several entries sharing a key survives.
func (e encoder) extensionFeature(f *cmis.ExtensionFeature) *object {
	o := newObject()
	o.Set("id", f.ID)
	setString(o, "url", f.URL)
	setString(o, "commonName", f.CommonName)
	setString(o, "versionLabel", f.VersionLabel)
	setString(o, "description", f.Description)
	if len(f.FeatureData) > 0 {
		data := newObject()
		for _, fd := range f.FeatureData {
			data.Set(fd.Key, fd.Value)
		}
		o.Set("featureData", data)
	}
	e.extensions(o, featureKeys, f.Extensions())
	return o
}

func (d decoder) repositoryInfo(val value) (*cmis.RepositoryInfo, error) {
	ri := &cmis.RepositoryInfo{}
	ext, err := d.fields(val, repoInfoKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "repositoryId":
			ri.ID, err = d.str(val)
		case "repositoryName":
			ri.Name, err = d.str(val)
		case "repositoryDescription":
			ri.Description, err = d.str(val)
		case "vendorName":
			ri.VendorName, err = d.str(val)
		case "productName":
			ri.ProductName, err = d.str(val)
		case "productVersion":
			ri.ProductVersion, err = d.str(val)
		case "rootFolderId":
			ri.RootFolderID, err = d.str(val)
		case "latestChangeLogToken":
			ri.LatestChangeLogToken, err = d.str(val)
		case "capabilities":
			ri.Capabilities, err = d.capabilities(val)
		case "aclCapabilities":
			ri.AclCapabilities, err = d.aclCapabilities(val)
		case "cmisVersionSupported":
			ri.CmisVersionSupported, err = d.str(val)
		case "thinClientURI":
			ri.ThinClientURI, err = d.str(val)
		case "changesIncomplete":
			ri.ChangesIncomplete, err = d.optBool(val)
		case "changesOnType":
			err = d.items(val, func(d decoder, val value) error {
				bt, err := parseEnum(d, "base type", val, cmis.BaseTypeID.Valid)
				if err == nil {
					ri.ChangesOnType = append(ri.ChangesOnType, bt)
				}
				return err
			})
		case "principalIdAnonymous":
			ri.PrincipalAnonymous, err = d.str(val)
		case "principalIdAnyone":
			ri.PrincipalAnyone, err = d.str(val)
		case "extendedFeatures":
			err = d.items(val, func(d decoder, val value) error {
				f, err := d.extensionFeature(val)
				if err == nil {
					ri.ExtensionFeatures = append(ri.ExtensionFeatures, f)
				}
				return err
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	ri.SetExtensions(ext)
	return ri, nil
}

func (d decoder) capabilities(val value) (*cmis.RepositoryCapabilities, error) {
	c := &cmis.RepositoryCapabilities{}
	ext, err := d.fields(val, capabilityKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "capabilityACL":
			c.Acl, err = parseEnum(d, key, val, cmis.CapabilityAcl.Valid)
		case "capabilityAllVersionsSearchable":
			c.AllVersionsSearchable, err = d.boolean(val)
		case "capabilityChanges":
			c.Changes, err = parseEnum(d, key, val, cmis.CapabilityChanges.Valid)
		case "capabilityContentStreamUpdatability":
			c.ContentStreamUpdates, err = parseEnum(d, key, val, cmis.CapabilityContentStreamUpdates.Valid)
		case "capabilityGetDescendants":
			c.GetDescendants, err = d.boolean(val)
		case "capabilityGetFolderTree":
			c.GetFolderTree, err = d.boolean(val)
		case "capabilityOrderBy":
			c.OrderBy, err = parseEnum(d, key, val, cmis.CapabilityOrderBy.Valid)
		case "capabilityMultifiling":
			c.MultiFiling, err = d.boolean(val)
		case "capabilityPWCSearchable":
			c.PWCSearchable, err = d.boolean(val)
		case "capabilityPWCUpdatable":
			c.PWCUpdatable, err = d.boolean(val)
		case "capabilityQuery":
			c.Query, err = parseEnum(d, key, val, cmis.CapabilityQuery.Valid)
		case "capabilityRenditions":
			c.Renditions, err = parseEnum(d, key, val, cmis.CapabilityRenditions.Valid)
		case "capabilityUnfiling":
			c.Unfiling, err = d.boolean(val)
		case "capabilityVersionSpecificFiling":
			c.VersionSpecificFiling, err = d.boolean(val)
		case "capabilityJoin":
			c.Join, err = parseEnum(d, key, val, cmis.CapabilityJoin.Valid)
		case "capabilityCreatablePropertyTypes":
			c.CreatablePropertyTypes, err = d.creatablePropertyTypes(val)
		case "capabilityNewTypeSettableAttributes":
			c.NewTypeSettableAttributes, err = d.newTypeSettableAttributes(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	c.SetExtensions(ext)
	return c, nil
}

func (d decoder) creatablePropertyTypes(val value) (*cmis.CreatablePropertyTypes, error) {
	cpt := &cmis.CreatablePropertyTypes{}
	ext, err := d.fields(val, creatableKeys, func(_ string, d decoder, val value) error {
		return d.items(val, func(d decoder, val value) error {
			t, err := parseEnum(d, "property type", val, cmis.PropertyType.Valid)
			if err == nil {
				cpt.CanCreate = append(cpt.CanCreate, t)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	cpt.SetExtensions(ext)
	return cpt, nil
}

func (d decoder) newTypeSettableAttributes(val value) (*cmis.NewTypeSettableAttributes, error) {
	a := &cmis.NewTypeSettableAttributes{}
	fields := map[string]*bool{}
	for i, f := range settableFields(a) {
		fields[settableNames[i]] = f
	}
	ext, err := d.fields(val, settableKeys, func(key string, d decoder, val value) error {
		var err error
		*fields[key], err = d.boolean(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.SetExtensions(ext)
	return a, nil
}

func (d decoder) aclCapabilities(val value) (*cmis.AclCapabilities, error) {
	c := &cmis.AclCapabilities{}
	ext, err := d.fields(val, aclCapKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "supportedPermissions":
			c.SupportedPermissions, err = parseEnum(d, key, val, cmis.SupportedPermissions.Valid)
		case "propagation":
			c.Propagation, err = parseEnum(d, key, val, cmis.AclPropagation.Valid)
		case "permissions":
			err = d.items(val, func(d decoder, val value) error {
				p := &cmis.PermissionDefinition{}
				ext, err := d.fields(val, permissionKeys, func(key string, d decoder, val value) error {
					var err error
					switch key {
					case "permission":
						p.ID, err = d.str(val)
					case "description":
						p.Description, err = d.str(val)
					}
					return err
				})
				p.SetExtensions(ext)
				c.Permissions = append(c.Permissions, p)
				return err
			})
		case "permissionMapping":
			err = d.items(val, func(d decoder, val value) error {
				m := &cmis.PermissionMapping{}
				ext, err := d.fields(val, mappingKeys, func(key string, d decoder, val value) error {
					var err error
					switch key {
					case "key":
						m.Key, err = d.str(val)
					case "permission":
						m.Permissions, err = d.strings(val)
					}
					return err
				})
				m.SetExtensions(ext)
				c.PermissionMapping = append(c.PermissionMapping, m)
				return err
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	c.SetExtensions(ext)
	return c, nil
}

func (d decoder) extensionFeature(val value) (*cmis.ExtensionFeature, error) {
	f := &cmis.ExtensionFeature{}
	ext, err := d.fields(val, featureKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "id":
			f.ID, err = d.str(val)
		case "url":
			f.URL, err = d.str(val)
		case "commonName":
			f.CommonName, err = d.str(val)
		case "versionLabel":
			f.VersionLabel, err = d.str(val)
		case "description":
			f.Description, err = d.str(val)
		case "featureData":
			err = d.members(val, func(key string, d decoder, val value) error {
				s, err := d.scalar(val)
				if err == nil {
					f.FeatureData = append(f.FeatureData, cmis.FeatureData{Key: key, Value: s})
				}
				return err
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	f.SetExtensions(ext)
	return f, nil
}
