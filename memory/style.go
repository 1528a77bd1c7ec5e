// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

type memStyle struct {
	style gsconfig.Style
	sld   []byte
}

// styleMap returns the styles of a workspace, or the global styles if
// workspace is empty.  It assumes the global lock.
func (c *Catalog) styleMap(workspace string) (map[string]*memStyle, error) {
	if workspace == "" {
		return c.styles, nil
	}
	ws, err := c.workspace(workspace)
	if err != nil {
		return nil, err
	}
	return ws.styles, nil
}

// style finds a style.  It assumes the global lock.
func (c *Catalog) style(workspace, name string) (map[string]*memStyle, *memStyle, error) {
	styles, err := c.styleMap(workspace)
	if err != nil {
		return nil, nil, err
	}
	style := styles[name]
	if style == nil {
		return styles, nil, notFound("style", name, workspace)
	}
	return styles, style, nil
}

// StyleNames returns the names of the styles in a workspace, or the
// global styles if workspace is empty, sorted.
func (c *Catalog) StyleNames(workspace string) ([]string, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	styles, err := c.styleMap(workspace)
	if err != nil {
		return nil, err
	}
	return sortedKeys(styles), nil
}

// Style returns a copy of a style.
func (c *Catalog) Style(workspace, name string) (gsconfig.Style, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, style, err := c.style(workspace, name)
	if err != nil {
		return gsconfig.Style{}, err
	}
	return style.style, nil
}

// CreateStyle adds a style with no SLD body.  If the style has no
// file name, one is made up from its name.
func (c *Catalog) CreateStyle(style gsconfig.Style) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if style.Name == "" {
		return badRequest("style name is required")
	}
	styles, existing, err := c.style(style.Workspace, style.Name)
	if styles == nil {
		return err
	}
	if existing != nil {
		return conflict("style", style.Name, style.Workspace)
	}
	if style.Filename == "" {
		style.Filename = style.Name + ".sld"
	}
	style.Href = ""
	styles[style.Name] = &memStyle{style: style}
	return nil
}

// UpdateStyle replaces the settings of a style, but not its SLD body.
func (c *Catalog) UpdateStyle(workspace, name string, update gsconfig.Style) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, style, err := c.style(workspace, name)
	if err != nil {
		return err
	}
	update.Name = name
	update.Workspace = workspace
	update.Href = ""
	if update.Filename == "" {
		update.Filename = style.style.Filename
	}
	style.style = update
	return nil
}

// StyleSLD returns the SLD body of a style.  A style that was created
// but never given a body is not found.
func (c *Catalog) StyleSLD(workspace, name string) ([]byte, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, style, err := c.style(workspace, name)
	if err != nil {
		return nil, err
	}
	if style.sld == nil {
		return nil, notFound("style body", name, workspace)
	}
	return append([]byte(nil), style.sld...), nil
}

// PutStyleSLD replaces the SLD body of an existing style.
func (c *Catalog) PutStyleSLD(workspace, name string, sld []byte) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, style, err := c.style(workspace, name)
	if err != nil {
		return err
	}
	style.sld = append([]byte(nil), sld...)
	style.style.Format = "sld"
	return nil
}

// DeleteStyle removes a style.  A style that is some layer's default
// cannot be deleted.  The SLD body is discarded regardless of purge,
// since there is no file to leave behind.
func (c *Catalog) DeleteStyle(workspace, name string, purge bool) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	styles, _, err := c.style(workspace, name)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(c.layers) {
		layerWorkspace, _ := restdata.SplitQualifiedName(key)
		if workspace != "" && layerWorkspace != workspace {
			continue
		}
		if c.layers[key].DefaultStyle == name {
			return forbidden("Style %s is the default style of layer %s", name, key)
		}
	}
	delete(styles, name)
	return nil
}
