package service

import (
    "context"
    "errors"
    "sort"
    "sync"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/repository"
)

// In-memory stand-ins for the MySQL repositories.  Each fake mirrors
// the contract of its interface, including the sentinel errors and
// the oldest-first ordering the waterfall depends on.

type memBookings struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[uint64]*model.MealBooking
}

func newMemBookings() *memBookings {
    return &memBookings{rows: make(map[uint64]*model.MealBooking)}
}

func (m *memBookings) add(b model.MealBooking) *model.MealBooking {
    m.mu.Lock()
    defer m.mu.Unlock()
    if b.ID == 0 {
        m.nextID++
        b.ID = m.nextID
    } else if b.ID > m.nextID {
        m.nextID = b.ID
    }
    cp := b
    m.rows[cp.ID] = &cp
    return &cp
}

func (m *memBookings) row(id uint64) model.MealBooking {
    m.mu.Lock()
    defer m.mu.Unlock()
    return *m.rows[id]
}

func (m *memBookings) UpsertBatch(ctx context.Context, records []model.MealBooking) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, rec := range records {
        var existing *model.MealBooking
        for _, b := range m.rows {
            if b.UserID == rec.UserID && b.Date.Equal(rec.Date) && b.MealType == rec.MealType {
                existing = b
                break
            }
        }
        if existing != nil {
            existing.Status = model.StatusBooked
            existing.Code = nil
            existing.PaymentType = nil
            existing.TotalPrice = decimal.Zero
            existing.AmountPaid = decimal.Zero
            existing.Balance = decimal.Zero
            existing.VerifiedAt = nil
            existing.BookedAt = rec.BookedAt
            continue
        }
        m.nextID++
        cp := rec
        cp.ID = m.nextID
        m.rows[cp.ID] = &cp
    }
    return nil
}

func (m *memBookings) GetByID(ctx context.Context, id uint64) (*model.MealBooking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    b, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    return &cp, nil
}

func (m *memBookings) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.MealBooking, error) {
    b, err := m.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if b.UserID != userID {
        return nil, repository.ErrBookingNotFound
    }
    return b, nil
}

func (m *memBookings) FindForDay(ctx context.Context, userID uint64, date time.Time, mealType string) (*model.MealBooking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, b := range m.rows {
        if b.UserID == userID && b.Date.Equal(date) && b.MealType == mealType {
            cp := *b
            return &cp, nil
        }
    }
    return nil, repository.ErrBookingNotFound
}

func (m *memBookings) ListForDay(ctx context.Context, userID uint64, date time.Time) ([]model.MealBooking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.MealBooking
    for _, b := range m.rows {
        if b.UserID == userID && b.Date.Equal(date) {
            out = append(out, *b)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (m *memBookings) Update(ctx context.Context, b *model.MealBooking) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.rows[b.ID]; !ok {
        return repository.ErrBookingNotFound
    }
    cp := *b
    m.rows[b.ID] = &cp
    return nil
}

func (m *memBookings) ListOutstanding(ctx context.Context, userID, excludeID uint64) ([]model.MealBooking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.MealBooking
    for _, b := range m.rows {
        if b.UserID == userID && b.Balance.IsPositive() && b.ID != excludeID {
            out = append(out, *b)
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].Date.Equal(out[j].Date) {
            return out[i].Date.Before(out[j].Date)
        }
        return out[i].ID < out[j].ID
    })
    return out, nil
}

func (m *memBookings) SumOutstanding(ctx context.Context, userID uint64) (decimal.Decimal, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    total := decimal.Zero
    for _, b := range m.rows {
        if b.UserID == userID && b.Balance.IsPositive() {
            total = total.Add(b.Balance)
        }
    }
    return total, nil
}

func (m *memBookings) Delete(ctx context.Context, id uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.rows[id]; !ok {
        return repository.ErrBookingNotFound
    }
    delete(m.rows, id)
    return nil
}

func (m *memBookings) CountServed(ctx context.Context, userID uint64) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var n int64
    for _, b := range m.rows {
        if b.UserID == userID && b.Status == model.StatusServed {
            n++
        }
    }
    return n, nil
}

func (m *memBookings) CountMissed(ctx context.Context, userID uint64, today time.Time) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var n int64
    for _, b := range m.rows {
        if b.UserID == userID && b.Status == model.StatusBooked && b.Date.Before(today) {
            n++
        }
    }
    return n, nil
}

type memUsers struct {
    mu   sync.Mutex
    rows map[uint64]*model.User
}

func newMemUsers() *memUsers {
    return &memUsers{rows: make(map[uint64]*model.User)}
}

func (m *memUsers) add(u model.User) *model.User {
    m.mu.Lock()
    defer m.mu.Unlock()
    cp := u
    m.rows[u.ID] = &cp
    return &cp
}

func (m *memUsers) row(id uint64) model.User {
    m.mu.Lock()
    defer m.mu.Unlock()
    return *m.rows[id]
}

func (m *memUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    u, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrUserNotFound
    }
    cp := *u
    return &cp, nil
}

func (m *memUsers) SetLoanAmount(ctx context.Context, userID uint64, amount decimal.Decimal) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    u, ok := m.rows[userID]
    if !ok {
        return repository.ErrUserNotFound
    }
    u.LoanAmount = amount
    return nil
}

func (m *memUsers) GetByBioID(ctx context.Context, bioID string) (*model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, u := range m.rows {
        if u.BioID != nil && *u.BioID == bioID {
            cp := *u
            return &cp, nil
        }
    }
    return nil, repository.ErrUserNotFound
}

func (m *memUsers) ClearSuspension(ctx context.Context, userID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    u, ok := m.rows[userID]
    if !ok {
        return repository.ErrUserNotFound
    }
    u.SuspendedUntil = nil
    return nil
}

type memPrices struct {
    mu    sync.Mutex
    price *model.MealPrice
}

func (m *memPrices) set(p model.MealPrice) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.price = &p
}

func (m *memPrices) Get(ctx context.Context) (*model.MealPrice, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.price == nil {
        return &model.MealPrice{}, nil
    }
    cp := *m.price
    return &cp, nil
}

type memAudit struct {
    mu   sync.Mutex
    rows []model.AuditLog
    fail bool
}

func (m *memAudit) Append(ctx context.Context, entry *model.AuditLog) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.fail {
        return errors.New("audit append failed")
    }
    entry.ID = uint64(len(m.rows) + 1)
    if entry.CreatedAt.IsZero() {
        entry.CreatedAt = time.Now().UTC()
    }
    m.rows = append(m.rows, *entry)
    return nil
}

func (m *memAudit) byAction(action string) []model.AuditLog {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.AuditLog
    for _, e := range m.rows {
        if e.Action == action {
            out = append(out, e)
        }
    }
    return out
}
