// Command poolctl builds fixed-capacity block pools and exercises them.
package main

func main() {
	execute()
}
