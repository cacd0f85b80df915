package mesh

import (
	"testing"

	"github.com/crillab/satswarm/message"
)

func TestFabricDeliveryIsOneCycleLater(t *testing.T) {
	f := NewFabric(NewGrid(2, 2), 10)
	f.Send(message.Message{From: message.NodeAddr(0), To: message.NodeAddr(1), Kind: message.FORK})

	if len(f.Inbox(1)) != 0 {
		t.Error("message should not be visible before the next Tick")
	}
	f.Tick()
	if len(f.Inbox(1)) != 1 {
		t.Fatalf("expected 1 message in node 1's inbox after Tick, got %d", len(f.Inbox(1)))
	}
}

func TestFabricConsumeInbox(t *testing.T) {
	f := NewFabric(NewGrid(2, 2), 10)
	f.Send(message.Message{From: message.NodeAddr(0), To: message.NodeAddr(1), Kind: message.FORK})
	f.Send(message.Message{From: message.NodeAddr(2), To: message.NodeAddr(1), Kind: message.FORK})
	f.Tick()

	if len(f.Inbox(1)) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(f.Inbox(1)))
	}
	f.ConsumeInbox(1, 1)
	if len(f.Inbox(1)) != 1 {
		t.Errorf("expected 1 message left after consuming 1, got %d", len(f.Inbox(1)))
	}
}

func TestFabricClauseTableRouting(t *testing.T) {
	f := NewFabric(NewGrid(2, 2), 10)
	f.Send(message.Message{From: message.NodeAddr(0), To: message.ClauseTableAddr(), Kind: message.SUBST_QUERY})
	f.Tick()

	if len(f.ClauseTableInbox()) != 1 {
		t.Fatalf("expected 1 message routed to the clause table, got %d", len(f.ClauseTableInbox()))
	}
	if len(f.Inbox(0)) != 0 {
		t.Error("clause-table-addressed message should not land in any node inbox")
	}
}

func TestFabricBusyTakesEffectNextCycle(t *testing.T) {
	f := NewFabric(NewGrid(2, 2), 10)
	f.SetBusy(0, true)
	if f.IsBusy(0) {
		t.Error("SetBusy should not take effect before the next Tick")
	}
	f.Tick()
	if !f.IsBusy(0) {
		t.Error("SetBusy should take effect after Tick")
	}
}

func TestFabricOrdersArrivalsBySourceThenKind(t *testing.T) {
	f := NewFabric(NewGrid(2, 2), 10)
	f.Send(message.Message{From: message.NodeAddr(2), To: message.NodeAddr(0), Kind: message.SAT_UP})
	f.Send(message.Message{From: message.NodeAddr(1), To: message.NodeAddr(0), Kind: message.UNSAT_UP})
	f.Tick()

	inbox := f.Inbox(0)
	if len(inbox) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(inbox))
	}
	if inbox[0].From.Node != 1 || inbox[1].From.Node != 2 {
		t.Errorf("expected arrivals ordered by source node id, got from=%d then from=%d", inbox[0].From.Node, inbox[1].From.Node)
	}
}
