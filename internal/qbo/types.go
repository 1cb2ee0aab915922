package qbo

// Ref points at another QuickBooks entity, by id and/or name.
type Ref struct {
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
}

// MemoRef wraps free-form memo text.
type MemoRef struct {
	Value string `json:"value"`
}

// EmailAddress is QuickBooks' email wrapper.
type EmailAddress struct {
	Address string `json:"Address"`
}

// TelephoneNumber is QuickBooks' phone wrapper.
type TelephoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

// Customer is a QuickBooks customer, with only the fields the push uses.
type Customer struct {
	ID               string           `json:"Id,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *TelephoneNumber `json:"PrimaryPhone,omitempty"`
}

// SalesItemLineDetail carries the quantity and price of one estimate line.
type SalesItemLineDetail struct {
	Qty       float64 `json:"Qty"`
	UnitPrice float64 `json:"UnitPrice"`
	// ItemRef by name only: QuickBooks matches an existing service item or
	// creates one.
	ItemRef Ref `json:"ItemRef"`
}

// Line is one estimate line item.
type Line struct {
	LineNum             int                  `json:"LineNum,omitempty"`
	Description         string               `json:"Description,omitempty"`
	DetailType          string               `json:"DetailType"`
	Amount              float64              `json:"Amount"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// Estimate is both the create payload and the API's response shape.
type Estimate struct {
	ID           string   `json:"Id,omitempty"`
	DocNumber    string   `json:"DocNumber,omitempty"`
	TxnDate      string   `json:"TxnDate,omitempty"`
	TxnStatus    string   `json:"TxnStatus,omitempty"`
	TotalAmt     float64  `json:"TotalAmt,omitempty"`
	CustomerRef  Ref      `json:"CustomerRef"`
	CurrencyRef  *Ref     `json:"CurrencyRef,omitempty"`
	CustomerMemo *MemoRef `json:"CustomerMemo,omitempty"`
	PrivateNote  string   `json:"PrivateNote,omitempty"`
	Line         []Line   `json:"Line,omitempty"`
}

// Item is a product or service entry.
type Item struct {
	ID   string `json:"Id,omitempty"`
	Name string `json:"Name"`
	Type string `json:"Type,omitempty"`
}

// CompanyInfo identifies the connected company.
type CompanyInfo struct {
	ID          string `json:"Id,omitempty"`
	CompanyName string `json:"CompanyName"`
	Country     string `json:"Country,omitempty"`
	CompanyAddr *struct {
		City string `json:"City,omitempty"`
	} `json:"CompanyAddr,omitempty"`
}
