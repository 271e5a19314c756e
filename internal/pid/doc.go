// Package pid implements a discrete-time PID controller.
//
// A [Controller] turns a sequence of timestamped error readings into a
// correction signal. The integral and derivative terms are weighted by the
// elapsed time between readings, so the output does not depend on how often
// [Controller.Update] is called.
//
// # Usage
//
//	c := pid.New(1.0, 0.5, 0.1)          // Kp, Ki, Kd; origin = now
//	u := c.Update(target - observed)     // timestamp = now
//	u = c.UpdateAt(target-observed, 12.5) // explicit timestamp
//
// An update whose timestamp is not after the previous one is rejected: it
// returns 0 and leaves the controller untouched. A rejected update cannot be
// told apart from a valid zero correction.
//
// A Controller is not safe for concurrent use. Callers sharing one instance
// across goroutines must serialize calls themselves.
package pid
