// Package motor abstracts the vibration actuator and the hold-to-cancel
// button. The dispatcher sequences drive calls; implementations here only
// translate them to hardware: GPIO direction lines on Linux, a Noop driver
// for motorless deployments, and fakes for tests.
package motor
