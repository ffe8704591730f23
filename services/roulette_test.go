package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPrizeAt(t *testing.T) {
	t.Run("out of range index rejected", func(t *testing.T) {
		if _, err := prizeAt(-1); !errors.Is(err, ErrInvalidPrize) {
			t.Errorf("prizeAt(-1) err = %v, want ErrInvalidPrize", err)
		}
		if _, err := prizeAt(len(prizeTable)); !errors.Is(err, ErrInvalidPrize) {
			t.Errorf("prizeAt(len) err = %v, want ErrInvalidPrize", err)
		}
	})

	t.Run("unblocked index pays the table amount", func(t *testing.T) {
		p, err := prizeAt(2)
		if err != nil {
			t.Fatalf("prizeAt(2) err = %v", err)
		}
		if p.Index != 2 || !p.AmountBs.Equal(decimal.NewFromInt(50)) {
			t.Errorf("prizeAt(2) = %+v, want index 2 amount 50", p)
		}
	})

	t.Run("blocked sectors rejected, never paid", func(t *testing.T) {
		// 7 (500 Bs) и 8 (1000 Bs) заблокированы
		for _, idx := range []int{7, 8} {
			if _, err := prizeAt(idx); !errors.Is(err, ErrBlockedPrize) {
				t.Errorf("prizeAt(%d) err = %v, want ErrBlockedPrize", idx, err)
			}
		}
	})

	t.Run("every unblocked sector resolvable", func(t *testing.T) {
		for i, want := range prizeTable {
			if want.Blocked {
				continue
			}
			p, err := prizeAt(i)
			if err != nil {
				t.Fatalf("prizeAt(%d) err = %v", i, err)
			}
			if p.Index != i || !p.AmountBs.Equal(want.AmountBs) {
				t.Errorf("prizeAt(%d) = %+v, want %+v", i, p, want)
			}
		}
	})
}

func TestPrizesIsACopy(t *testing.T) {
	prizes := Prizes()
	prizes[0].AmountBs = decimal.NewFromInt(999999)

	if !prizeTable[0].AmountBs.Equal(decimal.NewFromInt(5)) {
		t.Error("mutating Prizes() result must not change the prize table")
	}
}
