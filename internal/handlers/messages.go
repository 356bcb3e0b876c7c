package handlers

var okText = map[string]string{
	"guardado":          "Guardado.",
	"borrador_guardado": "Borrador guardado.",
	"enviado":           "Reporte enviado.",
	"eliminado":         "Eliminado.",
	"compartido":        "Enlace público habilitado.",
	"descompartido":     "Enlace público deshabilitado.",
}

var errText = map[string]string{
	"solicitud_invalida":     "Solicitud inválida.",
	"titulo_requerido":       "El título es requerido.",
	"alcance_invalido":       "Alcance de reporte inválido.",
	"tipo_invalido":          "Tipo de campo inválido.",
	"clave_duplicada":        "Hay claves de campo duplicadas.",
	"campo_desconocido":      "Uno de los campos no pertenece a este reporte.",
	"reporte_no_encontrado":  "Reporte no encontrado.",
	"entrada_no_encontrada":  "Entrada no encontrada.",
	"codigo_invalido":        "Código de acceso inválido.",
	"acceso_requerido":       "Ingrese el código de acceso de su célula.",
	"falta_entidad":          "Seleccione una célula, grupo o sector.",
	"entrada_final":          "El reporte ya fue enviado y no puede modificarse.",
	"confirmacion_requerida": "Confirme el envío del reporte.",
	"envio_fallido":          "Error al enviar el reporte.",
	"borrador_fallido":       "Error al guardar el borrador.",
	"no_autorizado":          "No autorizado.",
	"error_interno":          "Error interno. Intente de nuevo.",
}

func errMessage(code string) string {
	if t, ok := errText[code]; ok {
		return t
	}
	return code
}

func okMessage(code string) string {
	if t, ok := okText[code]; ok {
		return t
	}
	return code
}
