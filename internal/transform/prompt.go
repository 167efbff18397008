package transform

// DefaultPrompt is the conservative editing instruction applied when the
// client does not supply one: keep the product identity intact and only
// improve lighting, background and sharpness.
const DefaultPrompt = "Edita esta foto de producto para e-commerce. Mantén intacto el producto principal (misma forma, proporciones, textura, color base, logotipo y detalles de marca). Solo mejora elementos secundarios: iluminación, sombras suaves, fondo limpio/neutral, reflejos controlados y nitidez general. No cambies el diseño del producto, no agregues ni quites partes, no cambies el encuadre principal. Entrega una imagen realista y comercial lista para catálogo."
