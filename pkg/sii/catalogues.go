// Package sii catálogos y validaciones del formato DTE del Servicio de Impuestos Internos (Chile).
package sii

// Nombres de los tipos de documento soportados.
var DocTypeNames = map[int]string{
	33: "FACTURA ELECTRONICA",
	34: "FACTURA NO AFECTA O EXENTA ELECTRONICA",
	39: "BOLETA ELECTRONICA",
	61: "NOTA DE CREDITO ELECTRONICA",
}

// Códigos de referencia (CodRef) de una nota de crédito.
const (
	CodRefAnula         = "1" // anula el documento de referencia
	CodRefCorrigeTexto  = "2"
	CodRefCorrigeMontos = "3"
)

// RUTConsumidorFinal receptor genérico de boletas sin cliente identificado.
const RUTConsumidorFinal = "66666666-6"

// DocumentVersion versión del esquema DTE.
const DocumentVersion = "1.0"
