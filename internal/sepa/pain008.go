package sepa

import "encoding/xml"

const painNamespace = "urn:iso:std:iso:20022:tech:xsd:pain.008.001.02"

type document struct {
	XMLName xml.Name `xml:"Document"`
	Xmlns   string   `xml:"xmlns,attr"`
	Initn   initn    `xml:"CstmrDrctDbtInitn"`
}

type initn struct {
	GrpHdr groupHeader `xml:"GrpHdr"`
	PmtInf paymentInfo `xml:"PmtInf"`
}

type groupHeader struct {
	MsgID    string `xml:"MsgId"`
	CreDtTm  string `xml:"CreDtTm"`
	NbOfTxs  int    `xml:"NbOfTxs"`
	CtrlSum  string `xml:"CtrlSum"`
	InitgPty party  `xml:"InitgPty"`
}

type party struct {
	Nm string `xml:"Nm"`
}

type paymentInfo struct {
	PmtInfID     string        `xml:"PmtInfId"`
	PmtMtd       string        `xml:"PmtMtd"`
	BtchBookg    bool          `xml:"BtchBookg"`
	NbOfTxs      int           `xml:"NbOfTxs"`
	CtrlSum      string        `xml:"CtrlSum"`
	PmtTpInf     paymentType   `xml:"PmtTpInf"`
	ReqdColltnDt string        `xml:"ReqdColltnDt"`
	Cdtr         party         `xml:"Cdtr"`
	CdtrAcct     account       `xml:"CdtrAcct"`
	CdtrAgt      agent         `xml:"CdtrAgt"`
	ChrgBr       string        `xml:"ChrgBr"`
	CdtrSchmeID  schemeID      `xml:"CdtrSchmeId"`
	DrctDbtTxInf []transaction `xml:"DrctDbtTxInf"`
}

type paymentType struct {
	SvcLvl    code   `xml:"SvcLvl"`
	LclInstrm code   `xml:"LclInstrm"`
	SeqTp     string `xml:"SeqTp"`
}

type code struct {
	Cd string `xml:"Cd"`
}

type account struct {
	IBAN string `xml:"Id>IBAN"`
}

type agent struct {
	BIC   string `xml:"FinInstnId>BIC,omitempty"`
	Other string `xml:"FinInstnId>Othr>Id,omitempty"`
}

type schemeID struct {
	ID     string `xml:"Id>PrvtId>Othr>Id"`
	Scheme string `xml:"Id>PrvtId>Othr>SchmeNm>Prtry"`
}

type transaction struct {
	EndToEndID string        `xml:"PmtId>EndToEndId"`
	InstdAmt   amount        `xml:"InstdAmt"`
	Mandate    mandate       `xml:"DrctDbtTx>MndtRltdInf"`
	DbtrAgt    agent         `xml:"DbtrAgt"`
	Dbtr       party         `xml:"Dbtr"`
	DbtrAcct   account       `xml:"DbtrAcct"`
	RmtInf     remittanceInf `xml:"RmtInf"`
}

type amount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

type mandate struct {
	MndtID    string `xml:"MndtId"`
	DtOfSgntr string `xml:"DtOfSgntr"`
}

type remittanceInf struct {
	Ustrd string `xml:"Ustrd"`
}
