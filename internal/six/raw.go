package six

// Raw layer of the SIX interchange format. These structures mirror the
// source document and exist only for the duration of one Parse call; the
// canonical model never sees them.

// rawProject carries the document-level metadata.
type rawProject struct {
	Name string `xml:"nome,attr"`
}

// rawPreventivo is one estimate section: its metadata plus the line items
// it contains.
type rawPreventivo struct {
	ID    string    `xml:"preventivoId,attr"`
	Breve string    `xml:"breve,attr"`
	Voci  []rawVoce `xml:"voce"`
}

// rawVoce is one source line item ("voce"). Quantita may be absent, in
// which case the quantity is the sum of the attached rilevazioni rows.
type rawVoce struct {
	Progressivo int              `xml:"progressivo,attr"`
	Codice      string           `xml:"codice,attr"`
	Prezzario   string           `xml:"prezzario,attr"`
	Descrizione string           `xml:"descrizione"`
	Commento    string           `xml:"commento"`
	Quantita    string           `xml:"quantita"`
	Prezzo      string           `xml:"prezzoUnitario"`
	Unita       string           `xml:"unitaDiMisura"`
	Wbs         []rawWbsFragment `xml:"wbs"`
	Rilevazioni []rawRilevazione `xml:"rilevazione"`
}

// rawWbsFragment is one hierarchy level attached to a voce.
type rawWbsFragment struct {
	Codice string `xml:"codice,attr"`
	Label  string `xml:",chardata"`
}

// rawRilevazione is one quantity-contributing measurement row.
type rawRilevazione struct {
	Quantita string `xml:"quantita,attr"`
}

// rawUnit is a unit-of-measure dimension entry declared at document level.
type rawUnit struct {
	ID      string `xml:"id,attr"`
	Simbolo string `xml:"simbolo,attr"`
}

// rawPriceList is an external price-list linkage entry.
type rawPriceList struct {
	ID   string `xml:"id,attr"`
	Nome string `xml:"nome,attr"`
}

// rawGroupValue is a grouping-key dimension entry.
type rawGroupValue struct {
	ID     string `xml:"id,attr"`
	Valore string `xml:"valore,attr"`
}
