package stun

type transactionIDSetter bool

func (transactionIDSetter) AddTo(m *Message) error {
	if err := m.NewTransactionID(); err != nil {
		return err
	}
	if len(m.Raw) >= messageHeaderSize {
		copy(m.Raw[8:messageHeaderSize], m.TransactionID[:])
	}

	return nil
}

// TransactionID is a Setter that assigns m a fresh random transaction id,
// for use in Message.Build(TransactionID, ...).
var TransactionID Setter = transactionIDSetter(true)
