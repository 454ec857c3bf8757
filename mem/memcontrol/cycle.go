package memcontrol

// executeCycle runs one memory cycle of the internal timing model.
func (c *Comp) executeCycle() {
	c.tracker.Tick()

	if !c.cfg.FixedDelayMode() {
		c.refresher.Tick()
	}

	c.updateAging()

	if c.cfg.RandomArbitrate != 0 {
		c.roundRobin = c.rand.Intn(len(c.banks))
	}

	c.scanBanks()
	c.promote()
}

// updateAging starts a new aging batch once every bank of the previous batch
// has issued. A batch holds the heads of all non-empty bank queues.
func (c *Comp) updateAging() {
	c.ageCounter++

	for i := range c.banks {
		if c.banks[i].old() {
			return
		}
	}

	for i := range c.banks {
		if head := c.banks[i].head(); head != nil {
			head.Old = true
		}
	}

	c.ageCounter = 0
}

// scanBanks visits every bank once, starting after the bank that was visited
// last. A bank first tries its pending refresh and then its queue head.
func (c *Comp) scanBanks() {
	queueHeads := 0
	issued := 0

	for range c.banks {
		c.roundRobin++
		if c.roundRobin >= len(c.banks) {
			c.roundRobin = 0
		}

		bank := c.roundRobin
		c.issueRefresh(bank)

		size := c.banks[bank].queue.Size()
		if size > 1 {
			c.emit(HookPosBankQueueDepth, nil, bank, size-1)
		}

		if size == 0 {
			continue
		}

		c.idleCount = IdleThreshold
		queueHeads++

		if !c.queueReady(bank) {
			continue
		}

		c.issueRequest(bank)
		issued++

		if c.cfg.FixedDelayMode() {
			c.emit(HookPosWaitCycles, nil, bank, c.cfg.FixedDelay)
		}
	}

	if queueHeads > issued {
		c.emit(HookPosWaitCycles, nil, -1, queueHeads-issued)
	}
}

// promote moves the head of the input queue into its bank queue. Only one
// request moves per cycle, and a full bank queue blocks all requests behind
// it.
func (c *Comp) promote() {
	if len(c.inputQueue) == 0 {
		return
	}

	c.idleCount = IdleThreshold

	req := c.inputQueue[0]
	if req.ArrivalTime <= c.scheduler.CurrentTime() {
		bank := &c.banks[c.mapper.BankOf(req.Address)]
		if bank.queue.CanPush() {
			c.inputQueue[0] = nil
			c.inputQueue = c.inputQueue[1:]
			bank.queue.Push(req)
		}
	}

	c.emit(HookPosInputQueueDepth, nil, -1, len(c.inputQueue))
}
