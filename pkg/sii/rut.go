package sii

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateRUT valida el dígito verificador de un RUT chileno (módulo 11, pesos 2..7 de derecha a izquierda).
// Acepta "76.123.456-0", "76123456-0" o "761234560"; el DV puede ser K.
func ValidateRUT(rut string) error {
	body, dv, err := splitRUT(rut)
	if err != nil {
		return err
	}
	expected := ComputeDV(body)
	if dv != expected {
		return fmt.Errorf("sii: dígito verificador del RUT inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// ComputeDV calcula el dígito verificador para el cuerpo numérico del RUT.
func ComputeDV(body string) byte {
	sum, weight := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// NormalizeRUT devuelve el RUT sin puntos, con guión y DV en mayúscula (formato del DTE).
func NormalizeRUT(rut string) (string, error) {
	body, dv, err := splitRUT(rut)
	if err != nil {
		return "", err
	}
	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return "", fmt.Errorf("sii: cuerpo del RUT %q inválido: %w", rut, err)
	}
	return fmt.Sprintf("%d-%c", n, dv), nil
}

func splitRUT(rut string) (string, byte, error) {
	var clean []byte
	for _, r := range strings.ToUpper(rut) {
		if (r >= '0' && r <= '9') || r == 'K' {
			clean = append(clean, byte(r))
		}
	}
	if len(clean) < 2 {
		return "", 0, fmt.Errorf("sii: RUT %q demasiado corto", rut)
	}
	body, dv := string(clean[:len(clean)-1]), clean[len(clean)-1]
	if strings.ContainsRune(body, 'K') {
		return "", 0, fmt.Errorf("sii: RUT %q con K fuera del dígito verificador", rut)
	}
	return body, dv, nil
}
