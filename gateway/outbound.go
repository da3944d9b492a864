package gateway

import (
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"crosslend/core/events"
	"crosslend/observability"
)

// PayoutInstruction tells the host relayer to release funds on a connected
// chain. Delivery is at-least-once; the instruction id lets the relayer
// deduplicate on its side.
type PayoutInstruction struct {
	ID               string
	Asset            string
	Amount           *big.Int
	DestinationChain uint64
	Recipient        [20]byte
	CreatedAt        time.Time
}

// Transport hands payout instructions to the relayer. Implementations own
// durability and retries.
type Transport interface {
	Send(instruction PayoutInstruction) error
}

// Outbound builds payout instructions for withdrawals and borrows whose
// destination is not the hub chain. It satisfies the lending engine's
// PayoutRouter.
type Outbound struct {
	transport Transport
	events    EventSink
	metrics   *observability.GatewayMetrics
	now       func() time.Time
}

func NewOutbound(transport Transport) *Outbound {
	return &Outbound{
		transport: transport,
		metrics:   observability.Gateway(),
		now:       time.Now,
	}
}

// SetEventSink wires the event receiver.
func (o *Outbound) SetEventSink(sink EventSink) { o.events = sink }

// SetClock overrides the instruction timestamp source.
func (o *Outbound) SetClock(now func() time.Time) {
	if o == nil || now == nil {
		return
	}
	o.now = now
}

// QueuePayout builds a uuid-tagged instruction and hands it to the transport.
// The engine queues the payout before persisting the ledger mutation, so a
// transport failure aborts the whole operation.
func (o *Outbound) QueuePayout(asset string, amount *big.Int, destinationChain uint64, recipient [20]byte) error {
	if o == nil || o.transport == nil {
		return errors.New("gateway: outbound transport not configured")
	}
	instruction := PayoutInstruction{
		ID:               uuid.NewString(),
		Asset:            asset,
		Amount:           new(big.Int).Set(amount),
		DestinationChain: destinationChain,
		Recipient:        recipient,
		CreatedAt:        o.now(),
	}
	if err := o.transport.Send(instruction); err != nil {
		return err
	}
	o.metrics.RecordPayout(strconv.FormatUint(destinationChain, 10))
	if o.events != nil {
		o.events.Emit(events.GatewayPayoutQueued{
			InstructionID:    instruction.ID,
			Asset:            asset,
			Amount:           instruction.Amount,
			DestinationChain: destinationChain,
			Recipient:        recipient,
		}.Event())
	}
	return nil
}
