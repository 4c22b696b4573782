// Package moe implements mixture-of-experts dispatch for classifiers.
//
// A router model scores every class. The two best classes are matched
// against the label coverage of a pool of expert models; the first expert
// (in sorted key order) covering both is run on the same input and its
// logits are averaged with the router's. The arg-max of the fused vector
// is the prediction.
//
// Expert keys encode coverage: "5_23" is an expert trained to separate
// classes 5 and 23.
//
// Example:
//
//	d, err := moe.New(moe.DefaultConfig(), router, map[string]moe.Model{
//	    "1_2": expertA,
//	    "0_3": expertB,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	class, err := d.Predict(pixels)
//
// Models only need to implement Run; tests use scripted fakes.
package moe
