package services

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"

	"github.com/ruralpay/ledger/internal/models"
)

const (
	StatusAccepted = "ACSC"
	StatusRejected = "RJCT"
)

// ReceiptService renders completed transfers as ISO 20022 messages: a
// pacs.008 credit transfer and a pacs.002 status report.
type ReceiptService struct {
	currency string
	bic      string
	now      func() time.Time
}

func NewReceiptService(currency, bic string) *ReceiptService {
	if currency == "" {
		currency = "INR"
	}
	if bic == "" {
		bic = "RURALPAY"
	}
	return &ReceiptService{currency: currency, bic: bic, now: time.Now}
}

func messageID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// CreditTransfer builds the pacs.008 for a transfer between two accounts of
// this branch. Both agents carry the branch BIC.
func (s *ReceiptService) CreditTransfer(res *TransferResult, debtor, creditor models.Customer) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if res == nil || res.From == nil || res.To == nil {
		return nil, fmt.Errorf("credit transfer: incomplete transfer result")
	}
	creDtTm := s.now()
	settlementDate := creDtTm
	amount := res.Amount.InexactFloat64()
	bic := common.BICFIDec2014Identifier(s.bic)

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(messageID()),
			CreDtTm: common.ISODateTime(creDtTm),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(s.currency),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "INGA",
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(res.From.Number())}[0],
					EndToEndId: common.Max35Text(res.To.Number()),
					TxId:       &[]common.Max35Text{common.Max35Text(res.Reference)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(s.currency),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &bic,
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(debtor.Name())}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &bic,
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(creditor.Name())}[0],
				},
			},
		},
	}

	return doc, nil
}

// StatusReport builds the pacs.002 for a transfer reference.
func (s *ReceiptService) StatusReport(reference, fromAccount, toAccount, status string) *pacs_v08.FIToFIPaymentStatusReportV08 {
	return &pacs_v08.FIToFIPaymentStatusReportV08{
		GrpHdr: pacs_v08.GroupHeader53{
			MsgId:   common.Max35Text(messageID()),
			CreDtTm: common.ISODateTime(s.now()),
		},
		TxInfAndSts: []pacs_v08.PaymentTransaction80{
			{
				OrgnlInstrId:    &[]common.Max35Text{common.Max35Text(fromAccount)}[0],
				OrgnlEndToEndId: &[]common.Max35Text{common.Max35Text(toAccount)}[0],
				OrgnlTxId:       &[]common.Max35Text{common.Max35Text(reference)}[0],
				TxSts:           &[]pacs_v08.ExternalPaymentTransactionStatus1Code{pacs_v08.ExternalPaymentTransactionStatus1Code(status)}[0],
			},
		},
	}
}

// ToXML renders an ISO 20022 document with the XML header.
func (s *ReceiptService) ToXML(doc any) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}
