package dte

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/sales"
	"github.com/AstralMoonlight/torn/pkg/sii"
	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var _ sales.DocumentIssuer = (*Issuer)(nil)

// Issuer implementación de sales.DocumentIssuer que genera el XML DTE.
type Issuer struct {
	loc *time.Location
}

// NewIssuer crea el emisor. Las fechas del documento se expresan en loc (nil = America/Santiago o UTC si no existe).
func NewIssuer(loc *time.Location) *Issuer {
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation("America/Santiago"); err != nil {
			loc = time.UTC
		}
	}
	return &Issuer{loc: loc}
}

// Render arma el DTE, calcula el digest SHA-256 del nodo Documento canonicalizado y codifica en ISO-8859-1.
func (i *Issuer) Render(ctx context.Context, in sales.DocumentInput) (sales.Document, error) {
	if err := ctx.Err(); err != nil {
		return sales.Document{}, err
	}
	if in.Sale == nil || in.Issuer == nil {
		return sales.Document{}, fmt.Errorf("dte: faltan venta o emisor")
	}
	if err := sii.ValidateRUT(in.Issuer.TaxID); err != nil {
		return sales.Document{}, fmt.Errorf("dte: emisor: %w", err)
	}
	doc, documento, err := buildDocument(in, i.loc)
	if err != nil {
		return sales.Document{}, fmt.Errorf("dte: %w", err)
	}
	digest, err := digestOf(documento)
	if err != nil {
		return sales.Document{}, fmt.Errorf("dte: digest: %w", err)
	}
	utf8Body, err := doc.WriteToBytes()
	if err != nil {
		return sales.Document{}, fmt.Errorf("dte: serializar: %w", err)
	}
	body, err := toLatin1(utf8Body)
	if err != nil {
		return sales.Document{}, fmt.Errorf("dte: codificar ISO-8859-1: %w", err)
	}
	return sales.Document{Body: body, Digest: digest}, nil
}

// digestOf canonicaliza (C14N) el nodo Documento y devuelve su SHA-256 en base64.
func digestOf(documento *etree.Element) (string, error) {
	sub := etree.NewDocument()
	sub.SetRoot(documento.Copy())
	raw, err := sub.WriteToBytes()
	if err != nil {
		return "", err
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// toLatin1 los caracteres fuera de ISO-8859-1 se reemplazan en vez de fallar.
func toLatin1(utf8Body []byte) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	return enc.Bytes(utf8Body)
}

// Parse lee un DTE codificado en ISO-8859-1.
func Parse(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(label, "ISO-8859-1") || strings.EqualFold(label, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("dte: parsear: %w", err)
	}
	return doc, nil
}

// Digest recalcula el digest del nodo Documento de un DTE ya emitido.
func Digest(body []byte) (string, error) {
	doc, err := Parse(body)
	if err != nil {
		return "", err
	}
	documento := doc.FindElement("DTE/Documento")
	if documento == nil {
		return "", fmt.Errorf("dte: sin nodo Documento")
	}
	return digestOf(documento)
}
