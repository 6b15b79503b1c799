// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/marlinprotocol/contracts-sub002/api/utils"
	"github.com/marlinprotocol/contracts-sub002/common"
	"github.com/marlinprotocol/contracts-sub002/ledger"
	"github.com/marlinprotocol/contracts-sub002/logdb"
)

type Events struct {
	ledger *ledger.Ledger
	limit  uint64
}

func New(l *ledger.Ledger, limit uint64) *Events {
	return &Events{
		l,
		limit,
	}
}

func (e *Events) filter(ctx context.Context, filter *logdb.EventFilter) ([]*Event, error) {
	events, err := e.ledger.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]*Event, len(events))
	for i, ev := range events {
		res[i] = convertEvent(ev)
	}
	return res, nil
}

func (e *Events) parseFilter(query url.Values) (*logdb.EventFilter, error) {
	var criteria logdb.EventCriteria
	hasCriteria := false

	if name := query.Get("name"); name != "" {
		criteria.Name = &name
		hasCriteria = true
	}
	if s := query.Get("stash"); s != "" {
		stash, err := common.ParseBytes32(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "stash"))
		}
		criteria.Stash = &stash
		hasCriteria = true
	}
	if s := query.Get("account"); s != "" {
		account, err := common.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "account"))
		}
		criteria.Account = &account
		hasCriteria = true
	}
	if s := query.Get("cluster"); s != "" {
		cluster, err := common.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "cluster"))
		}
		criteria.Cluster = &cluster
		hasCriteria = true
	}

	filter := &logdb.EventFilter{}
	if hasCriteria {
		filter.CriteriaSet = []*logdb.EventCriteria{&criteria}
	}

	switch order := query.Get("order"); order {
	case "", string(logdb.ASC):
		filter.Order = logdb.ASC
	case string(logdb.DESC):
		filter.Order = logdb.DESC
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	from, err := utils.ParseUint64(query.Get("from"), 0)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "from"))
	}
	to, err := utils.ParseUint64(query.Get("to"), math.MaxInt64)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "to"))
	}
	if from > to {
		return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
	}
	unit := logdb.RangeType(query.Get("unit"))
	switch unit {
	case "":
		unit = logdb.Seq
	case logdb.Seq, logdb.Time:
	default:
		return nil, utils.BadRequest(fmt.Errorf("unit: unsupported value %q", unit))
	}
	filter.Range = &logdb.Range{Unit: unit, From: from, To: to}

	offset, err := utils.ParseUint64(query.Get("offset"), 0)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	if offset > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	limit, err := utils.ParseUint64(query.Get("limit"), e.limit)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > e.limit {
		return nil, utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	events, err := e.filter(req.Context(), filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
