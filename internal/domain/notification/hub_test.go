package notification

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestHub_LocalDelivery(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{StudentID: "alice@uni.edu", Send: make(chan []byte, 1)}
	hub.Register(conn)

	// Wait for the register channel to be drained
	deadline := time.After(time.Second)
	for hub.ConnectionCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("connection was never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	hub.NotifyStudent("alice@uni.edu", "redemption.created", map[string]int64{"cost": 30})

	select {
	case data := <-conn.Send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if event.Type != "redemption.created" {
			t.Errorf("event type = %q, want %q", event.Type, "redemption.created")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHub_OtherStudentNotDelivered(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{StudentID: "alice@uni.edu", Send: make(chan []byte, 1)}
	hub.Register(conn)

	deadline := time.After(time.Second)
	for hub.ConnectionCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("connection was never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	hub.NotifyStudent("bob@uni.edu", "quest.completed", nil)

	select {
	case <-conn.Send:
		t.Fatal("event for bob delivered to alice")
	case <-time.After(50 * time.Millisecond):
	}
}

// Connections come and go while notifications are in flight. Sending to a
// closed channel here would panic, so the test fails loudly if delivery
// ever races connection teardown.
func TestHub_NotifyDuringConnectionChurn(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			studentID := fmt.Sprintf("student-%d@uni.edu", n)
			for {
				select {
				case <-done:
					return
				default:
				}
				conn := &Connection{StudentID: studentID, Send: make(chan []byte, 1)}
				hub.Register(conn)
				hub.Unregister(conn)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			for n := 0; n < 4; n++ {
				hub.NotifyStudent(fmt.Sprintf("student-%d@uni.edu", n), "points.earned", map[string]int64{"points": 5})
			}
		}
	}()

	time.Sleep(200 * time.Millisecond)
	close(done)
	wg.Wait()
}
