package memcontrol

// A CompletionFunc is called by a DeviceModel when the transaction to the
// address completes. The cycle is the device's own clock.
type CompletionFunc func(addr uint64, cycle uint64)

// A DeviceModel is a device-level DRAM timing model that runs next to the
// controller. It may refuse a transaction, for example when its own queues
// are full, and reports completions through the registered callbacks.
type DeviceModel interface {
	// AddTransaction offers a transaction to the device. It returns false if
	// the device cannot take the transaction now.
	AddTransaction(isWrite bool, addr uint64) bool

	// Update advances the device by one memory cycle. Completion callbacks
	// are invoked from inside Update.
	Update()

	// RegisterCallbacks sets the functions to call when reads and writes
	// complete.
	RegisterCallbacks(readDone, writeDone CompletionFunc)
}

// executeDeviceCycle runs one memory cycle when the device model decides the
// timing.
func (c *Comp) executeDeviceCycle() {
	c.offerToDevice()
	c.device.Update()

	if len(c.inputQueue) > 0 || len(c.outstanding) > 0 {
		c.idleCount = IdleThreshold
	}

	if len(c.inputQueue) > 0 {
		c.emit(HookPosInputQueueDepth, nil, -1, len(c.inputQueue))
	}
}

// offerToDevice hands the arrived requests to the device in order, stopping
// at the first one that the device refuses.
func (c *Comp) offerToDevice() {
	now := c.scheduler.CurrentTime()

	for len(c.inputQueue) > 0 {
		req := c.inputQueue[0]
		if req.ArrivalTime > now {
			return
		}

		if !c.device.AddTransaction(!req.Type.IsRead(), req.Address) {
			return
		}

		c.inputQueue[0] = nil
		c.inputQueue = c.inputQueue[1:]
		c.outstanding = append(c.outstanding, req)

		if req.Type.IsRead() {
			c.emit(HookPosRead, req, c.mapper.BankOf(req.Address), 1)
		} else {
			c.emit(HookPosWrite, req, c.mapper.BankOf(req.Address), 1)
		}
	}
}

// deviceCompleted moves every outstanding request to the address into the
// response queue. When the internal timing model is in charge the device
// only shadows the traffic and its completions are ignored.
func (c *Comp) deviceCompleted(addr uint64, _ uint64) {
	if c.useInternalModel {
		return
	}

	remaining := c.outstanding[:0]

	for _, req := range c.outstanding {
		if req.Address != addr {
			remaining = append(remaining, req)
			continue
		}

		if req.Handle != nil {
			c.enqueueResponse(req, 0)
		}
	}

	for i := len(remaining); i < len(c.outstanding); i++ {
		c.outstanding[i] = nil
	}

	c.outstanding = remaining
}
