// Package dte genera el XML del Documento Tributario Electrónico (formato SII) de una venta o nota de crédito.
// No firma ni envía: entrega el cuerpo codificado en ISO-8859-1 y el digest del nodo Documento canonicalizado.
package dte

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/sales"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/pkg/sii"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	maxItemNameLen = 80
)

// documentID identificador del nodo Documento, referenciado por la firma del SII.
func documentID(s *entity.Sale) string {
	return fmt.Sprintf("T%dF%d", s.DocType, s.Folio)
}

// buildDocument arma <DTE><Documento>…</Documento></DTE> y devuelve el documento y el nodo Documento.
func buildDocument(in sales.DocumentInput, loc *time.Location) (*etree.Document, *etree.Element, error) {
	s := in.Sale
	if _, ok := sii.DocTypeNames[int(s.DocType)]; !ok {
		return nil, nil, fmt.Errorf("tipo de documento %d no soportado", s.DocType)
	}
	issuerRUT, err := sii.NormalizeRUT(in.Issuer.TaxID)
	if err != nil {
		return nil, nil, fmt.Errorf("emisor: %w", err)
	}
	receiverRUT, err := receiverTaxID(s.DocType, in.Customer)
	if err != nil {
		return nil, nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="ISO-8859-1"`)
	root := doc.CreateElement("DTE")
	root.CreateAttr("version", sii.DocumentVersion)
	documento := root.CreateElement("Documento")
	documento.CreateAttr("ID", documentID(s))

	enc := documento.CreateElement("Encabezado")
	idDoc := enc.CreateElement("IdDoc")
	text(idDoc, "TipoDTE", strconv.Itoa(int(s.DocType)))
	text(idDoc, "Folio", strconv.FormatInt(s.Folio, 10))
	text(idDoc, "FchEmis", s.CreatedAt.In(loc).Format(dateLayout))

	emisor := enc.CreateElement("Emisor")
	text(emisor, "RUTEmisor", issuerRUT)
	text(emisor, "RznSoc", in.Issuer.LegalName)
	text(emisor, "GiroEmis", in.Issuer.BusinessLine)
	if in.Issuer.ActivityCode != "" {
		text(emisor, "Acteco", in.Issuer.ActivityCode)
	}
	text(emisor, "DirOrigen", in.Issuer.Address)
	text(emisor, "CmnaOrigen", in.Issuer.Commune)
	if in.Issuer.City != "" {
		text(emisor, "CiudadOrigen", in.Issuer.City)
	}

	receptor := enc.CreateElement("Receptor")
	text(receptor, "RUTRecep", receiverRUT)
	if c := in.Customer; c != nil {
		text(receptor, "RznSocRecep", c.Name)
		optional(receptor, "GiroRecep", c.BusinessLine)
		optional(receptor, "DirRecep", c.Address)
		optional(receptor, "CmnaRecep", c.Commune)
		optional(receptor, "CiudadRecep", c.City)
	}

	totales := enc.CreateElement("Totales")
	if s.TaxRate.IsZero() {
		text(totales, "MntExe", amount(s.NetAmount))
	} else {
		text(totales, "MntNeto", amount(s.NetAmount))
		text(totales, "TasaIVA", s.TaxRate.Mul(decimal.NewFromInt(100)).String())
		text(totales, "IVA", amount(s.TaxAmount))
	}
	text(totales, "MntTotal", amount(s.TotalAmount))

	for i, l := range in.Lines {
		det := documento.CreateElement("Detalle")
		text(det, "NroLinDet", strconv.Itoa(i+1))
		if s.TaxRate.IsZero() {
			text(det, "IndExe", "1")
		}
		text(det, "NmbItem", itemName(in.Products[l.ProductID], l.ProductID))
		text(det, "QtyItem", l.Quantity.String())
		if p := in.Products[l.ProductID]; p != nil && p.UnitMeasure != "" {
			text(det, "UnmdItem", p.UnitMeasure)
		}
		text(det, "PrcItem", l.UnitPrice.String())
		text(det, "MontoItem", amount(l.Subtotal))
	}

	if s.DocType == entity.DocTypeNotaCredito {
		if in.Related == nil {
			return nil, nil, fmt.Errorf("nota de crédito %s sin documento de referencia", s.ID)
		}
		ref := documento.CreateElement("Referencia")
		text(ref, "NroLinRef", "1")
		text(ref, "TpoDocRef", strconv.Itoa(int(in.Related.DocType)))
		text(ref, "FolioRef", strconv.FormatInt(in.Related.Folio, 10))
		text(ref, "FchRef", in.Related.CreatedAt.In(loc).Format(dateLayout))
		text(ref, "CodRef", codRef(in.Related, s))
		text(ref, "RazonRef", s.Reason)
	}
	return doc, documento, nil
}

// receiverTaxID facturas exigen RUT válido del receptor; boletas usan consumidor final si no hay.
func receiverTaxID(docType entity.DocType, c *entity.Customer) (string, error) {
	if c == nil || c.TaxID == "" {
		if docType == entity.DocTypeBoleta {
			return sii.RUTConsumidorFinal, nil
		}
		return "", fmt.Errorf("receptor sin RUT para documento tipo %d", docType)
	}
	rut, err := sii.NormalizeRUT(c.TaxID)
	if err != nil {
		return "", fmt.Errorf("receptor: %w", err)
	}
	if err := sii.ValidateRUT(rut); err != nil {
		if docType == entity.DocTypeBoleta {
			return sii.RUTConsumidorFinal, nil
		}
		return "", fmt.Errorf("receptor: %w", err)
	}
	return rut, nil
}

// codRef anula si la nota devuelve el total del documento; si no, corrige montos.
func codRef(related, credit *entity.Sale) string {
	if credit.TotalAmount.Equal(related.TotalAmount) {
		return sii.CodRefAnula
	}
	return sii.CodRefCorrigeMontos
}

func itemName(p *entity.Product, fallback string) string {
	name := fallback
	if p != nil && p.Name != "" {
		name = p.Name
	}
	if r := []rune(name); len(r) > maxItemNameLen {
		name = string(r[:maxItemNameLen])
	}
	return name
}

func amount(d decimal.Decimal) string {
	return d.String()
}

func text(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func optional(parent *etree.Element, tag, value string) {
	if value != "" {
		text(parent, tag, value)
	}
}
