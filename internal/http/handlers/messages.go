package handlers

import "fmt"

type message struct {
	es string
	en string
}

// Client-facing messages, keyed by machine code. Spanish is the default
// catalog language; English is offered through content negotiation.
var messages = map[string]message{
	"missing_api_key": {
		es: "GEMINI_API_KEY no está configurada en el servidor",
		en: "GEMINI_API_KEY is not configured on the server",
	},
	"missing_image": {
		es: "No se proporcionó ninguna imagen",
		en: "No image was provided",
	},
	"unsupported_type": {
		es: "Tipo de archivo no permitido. Solo se permiten: %s",
		en: "File type not allowed. Allowed types: %s",
	},
	"file_too_large": {
		es: "El archivo es demasiado grande. Tamaño máximo: %dMB",
		en: "File is too large. Maximum size: %dMB",
	},
	"model_no_candidates": {
		es: "Gemini no generó una respuesta válida",
		en: "Gemini did not produce a valid response",
	},
	"model_no_parts": {
		es: "Respuesta de Gemini sin contenido",
		en: "Gemini response carried no content",
	},
	"model_no_image": {
		es: "Gemini no devolvió una imagen transformada",
		en: "Gemini did not return a transformed image",
	},
	"transform_failed": {
		es: "Error al transformar la imagen con IA",
		en: "Failed to transform the image with AI",
	},
	"store_failed": {
		es: "Error al guardar la imagen transformada",
		en: "Failed to store the transformed image",
	},
	"upload_failed": {
		es: "Error al subir la imagen",
		en: "Failed to upload the image",
	},
	"invalid_payload": {
		es: "Solicitud inválida",
		en: "Invalid request payload",
	},
	"invalid_product": {
		es: "Los datos del producto no son válidos",
		en: "Product data is not valid",
	},
	"create_failed": {
		es: "Error al crear el producto",
		en: "Failed to create the product",
	},
	"internal": {
		es: "Error interno del servidor",
		en: "Internal server error",
	},
}

func localizedMessage(code, locale string, args ...any) string {
	msg, ok := messages[code]
	if !ok {
		return code
	}
	text := msg.es
	if locale == "en" {
		text = msg.en
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}
