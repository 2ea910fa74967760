package devnet

import (
	"context"
	"fmt"
	"time"

	"github.com/emilianohg/spbuadmin/internal/ledger"
)

type seedRow struct {
	kind   string
	fields map[string]any
}

func seedRows(today time.Time) []seedRow {
	date := uint64(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local).Unix())
	rows := []seedRow{}
	for _, day := range []string{"Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"} {
		rows = append(rows, seedRow{"days", map[string]any{"name": day}})
	}
	rows = append(rows,
		seedRow{"units", map[string]any{"name": "Liter", "symbol": "L"}},
		seedRow{"units", map[string]any{"name": "Kiloliter", "symbol": "KL"}},

		seedRow{"purchaseStatuses", map[string]any{"name": "Dipesan", "description": "Pesanan dikirim ke depot"}},
		seedRow{"purchaseStatuses", map[string]any{"name": "Dikirim", "description": "Mobil tangki dalam perjalanan"}},
		seedRow{"purchaseStatuses", map[string]any{"name": "Diterima", "description": "BBM sudah masuk tangki timbun"}},

		seedRow{"products", map[string]any{"code": "PERTALITE", "name": "Pertalite", "unitId": uint64(1), "price": uint64(1000000), "active": true}},
		seedRow{"products", map[string]any{"code": "PERTAMAX", "name": "Pertamax", "unitId": uint64(1), "price": uint64(1290000), "active": true}},
		seedRow{"products", map[string]any{"code": "SOLAR", "name": "Biosolar", "unitId": uint64(1), "price": uint64(680000), "active": true}},

		seedRow{"stations", map[string]any{
			"code":    "34.17101",
			"name":    "SPBU Cibubur",
			"address": "Jl. Alternatif Cibubur No. 1, Bogor",
			"phone":   "081234567890",
			"wallet":  "0x52908400098527886E0F7030069857D2E4169EE7",
			"active":  true,
		}},

		seedRow{"workHours", map[string]any{"name": "Shift Pagi", "start": uint64(360), "end": uint64(840), "dayIds": []uint64{1, 2, 3, 4, 5}}},
		seedRow{"workHours", map[string]any{"name": "Shift Siang", "start": uint64(840), "end": uint64(1320), "dayIds": []uint64{1, 2, 3, 4, 5, 6}}},

		seedRow{"meterReadings", map[string]any{
			"spbuId": uint64(1), "nozzle": uint64(1), "productId": uint64(1), "date": date,
			"startMeter": uint64(12000000), "endMeter": uint64(12450050), "volume": uint64(450050),
		}},
	)
	return rows
}

// Seed fills an empty devnet with master data through the regular write
// path, so every seeded row also lands in the transaction log. It reports
// how many writes it made; a devnet that already has days is left alone.
func (c *Contract) Seed(ctx context.Context) (int, error) {
	if _, ok := c.kinds["days"]; ok {
		n, err := c.records.CountLive(ctx, "days")
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, nil
		}
	}

	written := 0
	for _, row := range seedRows(c.now()) {
		res, ok := c.kinds[row.kind]
		if !ok || res.Calls.Create == "" {
			continue
		}
		args := make([]any, len(res.WriteArgs))
		for i, key := range res.WriteArgs {
			args[i] = row.fields[key]
		}
		if _, err := c.Write(ctx, ledger.NewCall(res.Calls.Create, args...)); err != nil {
			return written, fmt.Errorf("seed %s: %w", row.kind, err)
		}
		written++
	}
	c.log.Info(ctx, "devnet seeded", "writes", written)
	return written, nil
}
