package catalog

import "catalogo/internal/transform"

// DefaultPrompt mirrors the server-side fallback so the form starts with the
// same conservative instruction the service would apply on its own.
const DefaultPrompt = transform.DefaultPrompt

// Preset is a curated edit prompt offered as a shortcut in the form.
type Preset struct {
	Label  string
	Prompt string
}

// Presets is the fixed catalog of edit prompts. They seed the prompt field;
// the operator may freely edit the text afterwards.
var Presets = []Preset{
	{
		Label:  "Fondo neutro premium",
		Prompt: "Edita esta foto de producto para e-commerce. Mantén intacto el producto principal. Reemplaza el fondo por un fondo neutro premium de color gris claro degradado con iluminación de estudio suave. Agrega sombras sutiles naturales debajo del producto. La imagen debe verse profesional y lista para catálogo.",
	},
	{
		Label:  "Look de estudio",
		Prompt: "Edita esta foto de producto para e-commerce. Mantén intacto el producto principal. Aplica iluminación profesional de estudio fotográfico con luces key y fill. Agrega reflejos controlados, sombras suaves y un fondo blanco puro. La imagen debe parecer tomada en un estudio profesional.",
	},
	{
		Label:  "Contexto suave minimalista",
		Prompt: "Edita esta foto de producto para e-commerce. Mantén intacto el producto principal. Coloca el producto en un entorno minimalista suave con superficie clara y fondo desenfocado en tonos neutros. Agrega iluminación natural difusa y sombras delicadas. La imagen debe transmitir elegancia y simplicidad.",
	},
}

// PresetByLabel returns the preset with the given label, if one exists.
func PresetByLabel(label string) (Preset, bool) {
	for _, p := range Presets {
		if p.Label == label {
			return p, true
		}
	}
	return Preset{}, false
}
