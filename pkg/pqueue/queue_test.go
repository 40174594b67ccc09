package pqueue

import "testing"

func TestQueue_PushOrder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opts     []Option
		push     []float64
		expected []float64
	}{
		{
			name:     "asc",
			opts:     []Option{WithOrderAsc()},
			push:     []float64{3, 1, 2},
			expected: []float64{1, 2, 3},
		},
		{
			name:     "desc",
			opts:     []Option{WithOrderDesc()},
			push:     []float64{3, 1, 2},
			expected: []float64{3, 2, 1},
		},
		{
			name:     "capped",
			opts:     []Option{WithOrderAsc(), WithCap(2)},
			push:     []float64{3, 1, 2},
			expected: []float64{1, 2},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			q := New(test.opts...)
			for i, p := range test.push {
				q.Push(i, p)
			}
			if q.Len() != len(test.expected) {
				t.Fatalf("queue length, got: %v, expected: %v", q.Len(), len(test.expected))
			}
			for i := range test.expected {
				_, prior := q.Seek(i)
				if prior != test.expected[i] {
					t.Errorf("priority at %d, got: %v, expected: %v", i, prior, test.expected[i])
				}
			}
		})
	}
}

func TestQueue_StableTies(t *testing.T) {
	t.Parallel()
	q := New(WithOrderAsc())
	q.Push("first", 1)
	q.Push("second", 1)
	q.Push("third", 0.5)
	q.Push("fourth", 1)

	expected := []string{"third", "first", "second", "fourth"}
	for i, want := range expected {
		val, _ := q.Seek(i)
		if val.(string) != want {
			t.Errorf("equal priorities must keep push order, position %d got: %v, expected: %v", i, val, want)
		}
	}
}

func TestQueue_HeadTail(t *testing.T) {
	t.Parallel()
	q := New(WithOrderAsc())
	if q.Head() != nil {
		t.Errorf("head of an empty queue, got: %v, expected: nil", q.Head())
	}
	if q.Tail() != nil {
		t.Errorf("tail of an empty queue, got: %v, expected: nil", q.Tail())
	}
	q.Push("a", 2)
	q.Push("b", 1)
	q.Push("c", 3)
	if head := q.Head(); head.(string) != "b" {
		t.Errorf("head of the queue, got: %v, expected: b", head)
	}
	if tail := q.Tail(); tail.(string) != "c" {
		t.Errorf("tail of the queue, got: %v, expected: c", tail)
	}
	if q.Len() != 1 {
		t.Errorf("queue length after head and tail, got: %v, expected: 1", q.Len())
	}
}

func TestQueue_PopAll(t *testing.T) {
	t.Parallel()
	q := New(WithOrderAsc())
	q.Push("a", 2)
	q.Push("b", 1)
	pulled := q.PopAll()
	if len(pulled) != 2 {
		t.Fatalf("pulled length, got: %v, expected: 2", len(pulled))
	}
	if pulled[0].(string) != "b" || pulled[1].(string) != "a" {
		t.Errorf("pulled order, got: %v, expected: [b a]", pulled)
	}
	if q.Len() != 0 {
		t.Errorf("queue length after pop all, got: %v, expected: 0", q.Len())
	}
}
