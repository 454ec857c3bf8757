package memcontrol

import "sort"

// responseQueue keeps completed requests ordered by ready time. Requests with
// the same ready time stay in the order they were pushed.
type responseQueue struct {
	reqs []*Request
}

func (q *responseQueue) push(req *Request) {
	i := sort.Search(len(q.reqs), func(i int) bool {
		return q.reqs[i].ReadyTime > req.ReadyTime
	})

	q.reqs = append(q.reqs, nil)
	copy(q.reqs[i+1:], q.reqs[i:])
	q.reqs[i] = req
}

func (q *responseQueue) head() *Request {
	if len(q.reqs) == 0 {
		return nil
	}

	return q.reqs[0]
}

func (q *responseQueue) pop() *Request {
	req := q.reqs[0]
	q.reqs[0] = nil
	q.reqs = q.reqs[1:]

	return req
}

func (q *responseQueue) len() int {
	return len(q.reqs)
}
