package types

import (
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
)

// LaptopSpec holds the hardware fields shown on laptop listings.
type LaptopSpec struct {
	Processor  string `json:"processor,omitempty"`
	RAM        string `json:"ram,omitempty"`
	Storage    string `json:"storage,omitempty"`
	Graphics   string `json:"graphics,omitempty"`
	OS         string `json:"os,omitempty"`
	FormFactor string `json:"form_factor,omitempty"`
	Display    string `json:"display,omitempty"`
}

// DesktopSpec mirrors LaptopSpec; desktops share the same field set.
type DesktopSpec struct {
	Processor  string `json:"processor,omitempty"`
	RAM        string `json:"ram,omitempty"`
	Storage    string `json:"storage,omitempty"`
	Graphics   string `json:"graphics,omitempty"`
	OS         string `json:"os,omitempty"`
	FormFactor string `json:"form_factor,omitempty"`
	Display    string `json:"display,omitempty"`
}

// MonitorSpec holds the panel fields shown on monitor listings.
type MonitorSpec struct {
	ScreenSize  string `json:"screen_size,omitempty"`
	PanelType   string `json:"panel_type,omitempty"`
	RefreshRate string `json:"refresh_rate,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
}

// AccessorySpec covers everything that is not a computer or a monitor.
type AccessorySpec struct {
	Kind          string `json:"kind,omitempty"`
	Compatibility string `json:"compatibility,omitempty"`
	Connectivity  string `json:"connectivity,omitempty"`
}

// Specs is the per-category specification variant persisted as jsonb. Exactly
// one member is expected to be populated, matching the product's category.
type Specs struct {
	Laptop    *LaptopSpec    `json:"laptop,omitempty"`
	Desktop   *DesktopSpec   `json:"desktop,omitempty"`
	Monitor   *MonitorSpec   `json:"monitor,omitempty"`
	Accessory *AccessorySpec `json:"accessory,omitempty"`
}

// LaptopSpecPatch carries partial laptop spec updates; nil fields are left as-is.
type LaptopSpecPatch struct {
	Processor  *string `json:"processor,omitempty"`
	RAM        *string `json:"ram,omitempty"`
	Storage    *string `json:"storage,omitempty"`
	Graphics   *string `json:"graphics,omitempty"`
	OS         *string `json:"os,omitempty"`
	FormFactor *string `json:"form_factor,omitempty"`
	Display    *string `json:"display,omitempty"`
}

// DesktopSpecPatch carries partial desktop spec updates.
type DesktopSpecPatch = LaptopSpecPatch

// MonitorSpecPatch carries partial monitor spec updates.
type MonitorSpecPatch struct {
	ScreenSize  *string `json:"screen_size,omitempty"`
	PanelType   *string `json:"panel_type,omitempty"`
	RefreshRate *string `json:"refresh_rate,omitempty"`
	Resolution  *string `json:"resolution,omitempty"`
}

// AccessorySpecPatch carries partial accessory spec updates.
type AccessorySpecPatch struct {
	Kind          *string `json:"kind,omitempty"`
	Compatibility *string `json:"compatibility,omitempty"`
	Connectivity  *string `json:"connectivity,omitempty"`
}

// SpecsPatch is the per-category partial update applied on product edits.
type SpecsPatch struct {
	Laptop    *LaptopSpecPatch    `json:"laptop,omitempty"`
	Desktop   *DesktopSpecPatch   `json:"desktop,omitempty"`
	Monitor   *MonitorSpecPatch   `json:"monitor,omitempty"`
	Accessory *AccessorySpecPatch `json:"accessory,omitempty"`
}

// MatchesCategory reports whether the populated variant agrees with category.
func (s Specs) MatchesCategory(category enums.ProductCategory) bool {
	switch category {
	case enums.ProductCategoryLaptop:
		return s.Desktop == nil && s.Monitor == nil && s.Accessory == nil
	case enums.ProductCategoryDesktop:
		return s.Laptop == nil && s.Monitor == nil && s.Accessory == nil
	case enums.ProductCategoryMonitor:
		return s.Laptop == nil && s.Desktop == nil && s.Accessory == nil
	case enums.ProductCategoryAccessory:
		return s.Laptop == nil && s.Desktop == nil && s.Monitor == nil
	default:
		return false
	}
}

// Merge applies a partial update, keeping existing values for nil fields.
// Missing variants are created on demand so a patch can populate a spec that
// was never filled in.
func (s *Specs) Merge(patch SpecsPatch) {
	if patch.Laptop != nil {
		if s.Laptop == nil {
			s.Laptop = &LaptopSpec{}
		}
		mergeComputer(patchTarget{
			processor: &s.Laptop.Processor, ram: &s.Laptop.RAM, storage: &s.Laptop.Storage,
			graphics: &s.Laptop.Graphics, os: &s.Laptop.OS, formFactor: &s.Laptop.FormFactor,
			display: &s.Laptop.Display,
		}, *patch.Laptop)
	}
	if patch.Desktop != nil {
		if s.Desktop == nil {
			s.Desktop = &DesktopSpec{}
		}
		mergeComputer(patchTarget{
			processor: &s.Desktop.Processor, ram: &s.Desktop.RAM, storage: &s.Desktop.Storage,
			graphics: &s.Desktop.Graphics, os: &s.Desktop.OS, formFactor: &s.Desktop.FormFactor,
			display: &s.Desktop.Display,
		}, *patch.Desktop)
	}
	if patch.Monitor != nil {
		if s.Monitor == nil {
			s.Monitor = &MonitorSpec{}
		}
		setIfPresent(&s.Monitor.ScreenSize, patch.Monitor.ScreenSize)
		setIfPresent(&s.Monitor.PanelType, patch.Monitor.PanelType)
		setIfPresent(&s.Monitor.RefreshRate, patch.Monitor.RefreshRate)
		setIfPresent(&s.Monitor.Resolution, patch.Monitor.Resolution)
	}
	if patch.Accessory != nil {
		if s.Accessory == nil {
			s.Accessory = &AccessorySpec{}
		}
		setIfPresent(&s.Accessory.Kind, patch.Accessory.Kind)
		setIfPresent(&s.Accessory.Compatibility, patch.Accessory.Compatibility)
		setIfPresent(&s.Accessory.Connectivity, patch.Accessory.Connectivity)
	}
}

type patchTarget struct {
	processor, ram, storage, graphics, os, formFactor, display *string
}

func mergeComputer(target patchTarget, patch LaptopSpecPatch) {
	setIfPresent(target.processor, patch.Processor)
	setIfPresent(target.ram, patch.RAM)
	setIfPresent(target.storage, patch.Storage)
	setIfPresent(target.graphics, patch.Graphics)
	setIfPresent(target.os, patch.OS)
	setIfPresent(target.formFactor, patch.FormFactor)
	setIfPresent(target.display, patch.Display)
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
