package memcontrol

// queueReady decides if the head of the bank queue can issue in this cycle.
// The checks run from the cheapest to the most specific and the first failing
// check is reported.
func (c *Comp) queueReady(bank int) bool {
	fixed := c.cfg.FixedDelayMode()

	if !fixed && c.tracker.BankBusy(bank) {
		c.emit(HookPosBankBusy, nil, bank, 1)
		return false
	}

	if fixed {
		return true
	}

	if c.cfg.RandomArbitrate >= 2 &&
		c.rand.Intn(100) < c.cfg.RandomArbitrate {
		c.emit(HookPosRandBusy, nil, bank, 1)
		return false
	}

	if c.ageCounter > 2*c.cfg.BankBusyTime && !c.banks[bank].old() {
		c.emit(HookPosNotOld, nil, bank, 1)
		return false
	}

	if c.tracker.BusClaimedThisCycle() {
		c.emit(HookPosArbWait, nil, bank, 1)
		return false
	}

	if c.tracker.BusBasicBusy() {
		c.emit(HookPosBusBusy, nil, bank, 1)
		return false
	}

	rank := c.mapper.RankOf(bank)
	if c.tracker.RankTFAWBlocked(rank) {
		c.emit(HookPosTfawBusy, nil, bank, 1)
		return false
	}

	req := c.banks[bank].head()
	if !req.Type.IsRead() && c.tracker.BusWriteBlocked() {
		c.emit(HookPosReadWriteBusy, nil, bank, 1)
		return false
	}

	if req.Type.IsRead() && c.tracker.BusReadNewRankBlocked(rank) {
		c.emit(HookPosDataBusBusy, nil, bank, 1)
		return false
	}

	return true
}

// issueRequest issues the head of the bank queue and schedules its response.
func (c *Comp) issueRequest(bank int) {
	rank := c.mapper.RankOf(bank)
	req := c.banks[bank].queue.Pop().(*Request)

	if req.Handle != nil {
		c.enqueueResponse(req, c.cfg.MemCtlLatency+c.cfg.FixedDelay)
	}

	req.Old = false
	c.tracker.ChargeActivate(rank)
	c.tracker.OccupyBank(bank, c.cfg.BankBusyTime)

	if req.Type.IsRead() {
		c.tracker.ReserveForRead(rank)
		c.emit(HookPosRead, req, bank, 1)
	} else {
		c.tracker.ReserveForWrite(rank)
		c.emit(HookPosWrite, req, bank, 1)
	}

	if c.device != nil {
		c.device.AddTransaction(!req.Type.IsRead(), req.Address)
	}
}

// issueRefresh refreshes the bank if its refresh is due. A refresh waits for
// the bank and the bus like a request, but bypasses random arbitration and
// aging.
func (c *Comp) issueRefresh(bank int) bool {
	if !c.refresher.Due(bank) {
		return false
	}

	if c.tracker.BankBusy(bank) || c.tracker.BusBasicBusy() {
		return false
	}

	rank := c.mapper.RankOf(bank)
	if c.tracker.RankTFAWBlocked(rank) {
		return false
	}

	c.refresher.Issued()
	c.tracker.OccupyBank(bank, c.cfg.BankBusyTime)
	c.tracker.ReserveForRefresh()
	c.tracker.ChargeActivate(rank)
	c.emit(HookPosRefresh, nil, bank, 1)

	return true
}
