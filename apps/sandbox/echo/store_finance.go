package echoapi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-client/core/balance"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/payment"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/receipt"
)

func (s *Store) pricingPlans() []payment.PricingPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plans := make([]payment.PricingPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.IsActive {
			plans = append(plans, p)
		}
	}
	return plans
}

// plan must be called with mu held.
func (s *Store) plan(id int) (payment.PricingPlan, bool) {
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return payment.PricingPlan{}, false
}

func (s *Store) balanceOf(id int) balance.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc := s.accounts[id]
	b := balance.Balance{Student: balance.StudentInfo{ID: id, Name: acc.profile.Name, Email: acc.profile.Email}}
	for _, p := range s.purchases[id] {
		b.Summary.HoursPurchased += p.HoursIncluded
		b.Summary.HoursConsumed += p.HoursConsumed
		if !p.IsActive {
			continue
		}
		b.Summary.BalanceAmount += p.AmountPaid * (p.HoursIncluded - p.HoursConsumed) / p.HoursIncluded
		if p.ExpiresAt.Valid && (!b.Summary.NextExpiryDate.Valid || p.ExpiresAt.Time.Before(b.Summary.NextExpiryDate.Time)) {
			b.Summary.NextExpiryDate = p.ExpiresAt
		}
	}
	b.Summary.RemainingHours = b.Summary.HoursPurchased - b.Summary.HoursConsumed
	return b
}

type financeFilter struct {
	TransactionType string
	ActiveOnly      bool
}

func (s *Store) transactions(id int, f financeFilter) []balance.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]balance.Transaction, 0)
	for _, t := range s.txns[id] {
		if f.TransactionType == "" || t.TransactionType == f.TransactionType {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

func (s *Store) purchasesOf(id int, f financeFilter) []balance.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]balance.Purchase, 0)
	for _, p := range s.purchases[id] {
		if !f.ActiveOnly || p.IsActive {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

// Consume books hours of a class against the oldest active purchase; used to
// simulate attended classes.
func (s *Store) Consume(studentID int, hours float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.purchases[studentID]
	for i := range ps {
		p := &ps[i]
		if !p.IsActive || hours <= 0 {
			continue
		}
		used := hours
		if left := p.HoursIncluded - p.HoursConsumed; used > left {
			used = left
		}
		p.HoursConsumed += used
		hours -= used
		p.IsActive = p.HoursConsumed < p.HoursIncluded
		s.txns[studentID] = append(s.txns[studentID], balance.Transaction{
			ID:              s.nextPK(),
			TransactionType: balance.TransactionConsumption,
			Hours:           -used,
			Description:     "Class attended",
			CreatedAt:       s.now().UTC(),
		})
	}

	if b := s.remaining(studentID); b <= 0 {
		s.notify(studentID, notification.TypeBalanceDepleted, "Balance depleted", "You have no tutoring hours left.", 0)
	} else if b < 2 {
		s.notify(studentID, notification.TypeLowBalance, "Low balance", fmt.Sprintf("Only %.1f hours left.", b), 0)
	}
}

// remaining must be called with mu held.
func (s *Store) remaining(id int) float64 {
	var left float64
	for _, p := range s.purchases[id] {
		left += p.HoursIncluded - p.HoursConsumed
	}
	return left
}

func (s *Store) paymentMethods(id int) []payment.Method {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]payment.Method{}, s.methods[id]...)
}

func (s *Store) setDefaultMethod(id int, methodID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.methods[id]
	found := false
	for i := range ms {
		ms[i].IsDefault = ms[i].ID == methodID
		found = found || ms[i].IsDefault
	}
	return found
}

func (s *Store) deleteMethod(id int, methodID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.methods[id]
	for i, m := range ms {
		if m.ID == methodID {
			s.methods[id] = append(ms[:i], ms[i+1:]...)
			return true
		}
	}
	return false
}

// purchaseFailure is a purchase request the sandbox rejects with a 400 Result.
type purchaseFailure struct {
	field, message string
}

func (f *purchaseFailure) result() *purchase.Result {
	return &purchase.Result{
		ErrorType:   purchase.ErrorTypeValidation,
		Message:     f.message,
		FieldErrors: purchase.FieldErrors{f.field: {f.message}},
	}
}

// buy settles a purchase of planID at once. A repeated idempotency key returns the
// first result. ok is false when the plan does not exist.
func (s *Store) buy(studentID, planID int, idemKey string) (res *purchase.Result, failure *purchaseFailure, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idemKey != "" {
		if prev, seen := s.idemKeys[idemKey]; seen {
			return prev, nil, true
		}
	}
	plan, found := s.plan(planID)
	if !found {
		return nil, nil, false
	}
	if !plan.IsActive {
		return nil, &purchaseFailure{field: "plan_id", message: "This plan is no longer available."}, true
	}

	now := s.now().UTC()
	intentID := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	txnID := s.nextPK()

	p := balance.Purchase{
		ID:              s.nextPK(),
		PlanName:        plan.Name,
		HoursIncluded:   plan.HoursIncluded,
		AmountPaid:      plan.PriceEUR,
		PaymentStatus:   "completed",
		IsActive:        true,
		PurchasedAt:     now,
		PaymentIntentID: intentID,
	}
	if plan.ValidityDays.Valid {
		p.ExpiresAt = null.TimeFrom(now.Add(time.Duration(plan.ValidityDays.Int) * 24 * time.Hour))
	}
	s.purchases[studentID] = append(s.purchases[studentID], p)
	s.txns[studentID] = append(s.txns[studentID], balance.Transaction{
		ID:              txnID,
		TransactionType: balance.TransactionPurchase,
		Hours:           plan.HoursIncluded,
		Amount:          plan.PriceEUR,
		Description:     "Purchase of " + plan.Name,
		PaymentIntentID: null.StringFrom(intentID),
		CreatedAt:       now,
	})
	s.intents[intentID] = &purchase.Status{
		PaymentIntentID: intentID,
		Status:          "succeeded",
		TransactionID:   txnID,
		HoursAdded:      plan.HoursIncluded,
	}
	s.notify(studentID, notification.TypePurchaseConfirmed, "Purchase confirmed",
		fmt.Sprintf("%.0f hours were added to your balance.", plan.HoursIncluded), txnID)
	s.record(s.accounts[studentID], "purchase_completed", s.accounts[studentID].profile.Name+" bought "+plan.Name)

	res = &purchase.Result{
		Success:         true,
		ClientSecret:    intentID + "_secret_sandbox",
		PaymentIntentID: intentID,
		TransactionID:   txnID,
		PlanDetails:     &purchase.PlanDetails{Name: plan.Name, HoursIncluded: plan.HoursIncluded, PriceEUR: plan.PriceEUR},
	}
	if idemKey != "" {
		s.idemKeys[idemKey] = res
	}
	return res, nil, true
}

// lastPlanID is the plan of the most recent purchase, 0 when there is none.
func (s *Store) lastPlanID(studentID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps := s.purchases[studentID]
	if len(ps) == 0 {
		return 0
	}
	last := ps[len(ps)-1]
	for _, p := range s.plans {
		if p.Name == last.PlanName {
			return p.ID
		}
	}
	return 0
}

func (s *Store) intent(id string) (purchase.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.intents[id]
	if !ok {
		return purchase.Status{}, false
	}
	return *st, true
}

// generateReceipt returns the receipt of a purchase transaction, issuing it on first
// call. ok is false when the transaction is unknown.
func (s *Store) generateReceipt(studentID, txnID int) (receipt.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.receipts[studentID] {
		if r.TransactionID == txnID {
			return r, true
		}
	}
	for _, t := range s.txns[studentID] {
		if t.ID != txnID || t.TransactionType != balance.TransactionPurchase {
			continue
		}
		now := s.now().UTC()
		r := receipt.Receipt{
			ID:            s.nextPK(),
			Amount:        t.Amount,
			Currency:      "EUR",
			PlanName:      strings.TrimPrefix(t.Description, "Purchase of "),
			HoursIncluded: t.Hours,
			TransactionID: t.ID,
			IssuedAt:      now,
		}
		r.ReceiptNumber = fmt.Sprintf("RCP-%d-%06d", now.Year(), r.ID)
		s.receipts[studentID] = append(s.receipts[studentID], r)
		return r, true
	}
	return receipt.Receipt{}, false
}

func (s *Store) receiptsOf(studentID, year int) []receipt.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]receipt.Receipt, 0)
	for _, r := range s.receipts[studentID] {
		if year == 0 || r.IssuedAt.Year() == year {
			res = append(res, r)
		}
	}
	return res
}

func (s *Store) receipt(studentID, id int) (receipt.Receipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.receipts[studentID] {
		if r.ID == id {
			return r, true
		}
	}
	return receipt.Receipt{}, false
}

// notify must be called with mu held.
func (s *Store) notify(id int, kind, title, msg string, txnID int) {
	n := notification.Notification{
		ID:               s.nextPK(),
		NotificationType: kind,
		Title:            title,
		Message:          msg,
		CreatedAt:        s.now().UTC(),
	}
	if txnID > 0 {
		n.RelatedTransactionID = null.IntFrom(txnID)
	}
	s.notifs[id] = append(s.notifs[id], n)
}

type notificationFilter struct {
	NotificationType string
	IsRead           *bool
}

func (s *Store) notifications(id int, f notificationFilter) []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]notification.Notification, 0)
	for _, n := range s.notifs[id] {
		if (f.NotificationType != "" && n.NotificationType != f.NotificationType) ||
			(f.IsRead != nil && n.IsRead != *f.IsRead) {
			continue
		}
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

func (s *Store) unreadCount(id int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifs[id] {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// markRead marks one notification (or all of them when nID is 0) and returns how
// many changed. ok is false when nID is unknown.
func (s *Store) markRead(id, nID int) (marked int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	ns := s.notifs[id]
	for i := range ns {
		n := &ns[i]
		if nID != 0 && n.ID != nID {
			continue
		}
		ok = true
		if !n.IsRead {
			n.IsRead = true
			n.ReadAt = null.TimeFrom(now)
			marked++
		}
	}
	return marked, ok || nID == 0
}
